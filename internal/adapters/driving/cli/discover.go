package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardscrub/internal/adapters/driven/report"
	"github.com/custodia-labs/cardscrub/internal/core/domain"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driving"
	"github.com/custodia-labs/cardscrub/internal/core/services"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

// DefaultReportPath is where discover writes and apply reads the report.
const DefaultReportPath = "recurring_card_report.csv"

// previewRows is how many profiles a dry run prints.
const previewRows = 5

var (
	discoverOut             string
	discoverDry             bool
	discoverLimit           int
	discoverIncludeDisabled bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan recurring invoices for stored cards",
	Long: `Pages through every recurring invoice, fetches the full record of each
autobill-enabled one and records whether it has a stored card and a Stripe
gateway.

With --dry (the default) the result is summarised on screen. Pass --dry=false
to write the CSV report that apply reads.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&discoverOut, "out", DefaultReportPath, "report path")
	discoverCmd.Flags().BoolVar(&discoverDry, "dry", true, "print a summary instead of writing the report")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 2, "stop after this many list entries (0 scans everything)")
	discoverCmd.Flags().BoolVar(&discoverIncludeDisabled, "include-disabled", false,
		"also list autobill-disabled profiles")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	api, err := invoiceAPIFactory()
	if err != nil {
		return err
	}

	logger.Section("Scan")
	bar := newScanProgress(cmd.ErrOrStderr(), discoverLimit)
	profiles, err := services.NewProfileScanner(api).FetchRecurringProfiles(cmd.Context(), driving.ScanOptions{
		Limit:           discoverLimit,
		IncludeDisabled: discoverIncludeDisabled,
		OnProgress:      bar.Update,
	})
	bar.Done()
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}

	withCard, withStripe := 0, 0
	for _, p := range profiles {
		if p.CardIDPresent {
			withCard++
		}
		if p.StripeGatewayPresent {
			withStripe++
		}
	}

	if discoverDry {
		cmd.Println(styles.Title.Render(fmt.Sprintf("Dry run: found %d profiles", len(profiles))))
		cmd.Printf("  with stored card: %d\n", withCard)
		cmd.Printf("  with Stripe gateway: %d\n", withStripe)
		if len(profiles) > 0 {
			renderProfiles(cmd, profiles)
		}
		cmd.Println(styles.Muted.Render("No report written. Re-run with --dry=false to write " + discoverOut + "."))
		return nil
	}

	if err := report.WriteProfileCSV(discoverOut, profiles); err != nil {
		return err
	}
	cmd.Println(styles.Success.Render(fmt.Sprintf("Wrote %d profiles to %s", len(profiles), discoverOut)))
	cmd.Printf("  with stored card: %d\n", withCard)
	return nil
}

// renderProfiles prints the first few profiles as a table.
func renderProfiles(cmd *cobra.Command, profiles []domain.RecurringProfile) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Profile", "Customer", "Card", "Stripe"})

	shown := profiles
	if len(shown) > previewRows {
		shown = shown[:previewRows]
	}
	for _, p := range shown {
		t.AppendRow(table.Row{p.ProfileID, p.CustomerName, yesNo(p.CardIDPresent), yesNo(p.StripeGatewayPresent)})
	}
	if rest := len(profiles) - len(shown); rest > 0 {
		t.AppendFooter(table.Row{fmt.Sprintf("... %d more", rest)})
	}

	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	s.Format.Footer = text.FormatDefault
	t.SetStyle(s)
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
