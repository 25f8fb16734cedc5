package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme defines the colour palette for command output.
type Theme struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(theme.Error),
	}
}

var styles = NewStyles(nil)

// scanProgress draws a single-line progress indicator on a terminal.
// On anything else it stays silent.
type scanProgress struct {
	out   io.Writer
	bar   progress.Model
	total int
	shown bool
}

// newScanProgress returns nil unless out is an interactive terminal.
func newScanProgress(out io.Writer, total int) *scanProgress {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &scanProgress{
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total: total,
	}
}

// Update redraws the indicator for examined profiles.
func (p *scanProgress) Update(examined int) {
	if p == nil {
		return
	}
	p.shown = true
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\rScanned %d profiles", examined)
		return
	}
	pct := float64(examined) / float64(p.total)
	if pct > 1 {
		pct = 1
	}
	fmt.Fprintf(p.out, "\r%s %d/%d", p.bar.ViewAs(pct), examined, p.total)
}

// Done ends the progress line.
func (p *scanProgress) Done() {
	if p == nil || !p.shown {
		return
	}
	fmt.Fprintln(p.out)
}
