package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardscrub/internal/adapters/driven/report"
	"github.com/custodia-labs/cardscrub/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driving"
	"github.com/custodia-labs/cardscrub/internal/core/services"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

var (
	applyConfirm    bool
	applyCSVPath    string
	applyMaxChanges int
	applyAudit      bool
	applyAuditDB    string
)

// closableLedger is an audit ledger that owns a resource.
type closableLedger interface {
	driven.AuditLedger
	Path() string
	Close() error
}

// openLedger opens the audit ledger at path. Replaced in tests.
var openLedger = func(path string) (closableLedger, error) {
	return sqlite.NewLedger(path)
}

// newRunID tags one apply run.
var newRunID = uuid.NewString

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Detach stored cards listed in the report",
	Long: `Reads the discover report and, for every row with a stored card, deletes
the card from the recurring invoice and re-fetches the record to verify it is
gone. Rows are processed in file order and the run stops at the first failure.

--max-changes caps the number of profiles touched in one run. Pass
--confirm=false to print what would change without calling the API.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&applyConfirm, "confirm", true, "perform the mutations (false prints them only)")
	applyCmd.Flags().StringVar(&applyCSVPath, "csv-path", DefaultReportPath, "report to read")
	applyCmd.Flags().IntVar(&applyMaxChanges, "max-changes", driving.DefaultMaxChanges,
		"abort before mutating more than this many profiles")
	applyCmd.Flags().BoolVar(&applyAudit, "audit", false, "record before/after state of every change in a SQLite ledger")
	applyCmd.Flags().StringVar(&applyAuditDB, "audit-db", "", "ledger file (default audit_YYYYMMDD.sqlite)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	api, err := invoiceAPIFactory()
	if err != nil {
		return err
	}

	profiles, err := report.ReadEligibleProfiles(applyCSVPath)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		cmd.Printf("No profiles with a stored card in %s.\n", applyCSVPath)
		return nil
	}

	var ledger driven.AuditLedger
	if applyAudit && applyConfirm {
		path := applyAuditDB
		if path == "" {
			path = defaultAuditDB(time.Now())
		}
		l, err := openLedger(path)
		if err != nil {
			return fmt.Errorf("opening audit ledger: %w", err)
		}
		defer l.Close()
		ledger = l
		cmd.Println(styles.Muted.Render("Audit ledger: " + l.Path()))
	}

	logger.Section("Apply")
	runID := newRunID()
	mode := "live"
	if !applyConfirm {
		mode = "dry run"
	}
	cmd.Println(styles.Title.Render(fmt.Sprintf("Applying to %d profiles (%s, run %s)", len(profiles), mode, runID)))

	result, runErr := services.NewApplyRunner(api, ledger).Run(cmd.Context(), profiles, driving.ApplyOptions{
		Confirm:    applyConfirm,
		MaxChanges: applyMaxChanges,
		RunID:      runID,
		OnEvent:    func(ev driving.ApplyEvent) { printApplyEvent(cmd, ev) },
	})

	if result != nil {
		verb := "Scrubbed"
		if !applyConfirm {
			verb = "Would scrub"
		}
		summary := fmt.Sprintf("%s %d profiles, skipped %d", verb, result.Mutated, result.Skipped)
		if runErr != nil {
			cmd.Println(styles.Warning.Render(summary + " before stopping"))
		} else {
			cmd.Println(styles.Success.Render(summary))
		}
	}
	if runErr != nil {
		return fmt.Errorf("apply aborted: %w", runErr)
	}
	return nil
}

func printApplyEvent(cmd *cobra.Command, ev driving.ApplyEvent) {
	switch ev.Kind {
	case driving.EventScrubbed:
		line := "scrubbed " + ev.ProfileID
		if ev.Audited {
			line += styles.Muted.Render(" (audited)")
		}
		cmd.Println(styles.Success.Render("✓ ") + line)
	case driving.EventWouldMutate:
		cmd.Println(styles.Muted.Render("would scrub " + ev.ProfileID))
	case driving.EventSkipped:
		cmd.Println(styles.Warning.Render("skipped "+ev.ProfileID) + ": " + ev.Reason)
	}
}

func defaultAuditDB(now time.Time) string {
	return "audit_" + now.Format("20060102") + ".sqlite"
}
