// Package cli provides the cobra command tree for cardscrub.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardscrub/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cardscrub/internal/adapters/driven/oauth"
	"github.com/custodia-labs/cardscrub/internal/adapters/driven/zoho"
	"github.com/custodia-labs/cardscrub/internal/config"
	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
	"github.com/custodia-labs/cardscrub/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// global flags
var (
	envFile   string
	configDir string
	verbose   bool
	logFormat string
)

// invoiceAPIFactory builds the Zoho adapter from process configuration.
// Replaced in tests.
var invoiceAPIFactory = newInvoiceAPI

// settingsStoreFactory opens the non-secret settings store.
var settingsStoreFactory = func() (driven.ConfigStore, error) {
	return file.NewConfigStore(configDir)
}

var rootCmd = &cobra.Command{
	Use:   "cardscrub",
	Short: "Audit and scrub stored cards on Zoho Books recurring invoices",
	Long: `cardscrub finds Zoho Books recurring invoices that still carry a stored
payment card, writes them to a CSV report, and detaches the cards from the
profiles listed in that report.

Run "discover" first, review the report, then "apply".`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verbose)
		return logger.SetFormat(logger.Format(strings.ToLower(logFormat)))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile,
		"file holding REFRESH_TOKEN, CLIENT_ID, CLIENT_SECRET and ORGANISATION_ID (empty to skip)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"settings directory (default is $HOME/"+file.DirName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request and decision")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(logger.FormatConsole),
		"log format (console, json)")
}

// Execute runs the root command with ctx and reports a failure on stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln(styles.Error.Render("Error: " + err.Error()))
	}
	return err
}

// newInvoiceAPI loads the env file and settings, then wires the token
// provider and HTTP gateway.
func newInvoiceAPI() (driven.RecurringInvoiceAPI, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	store, err := settingsStoreFactory()
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}

	cfg, err := config.Load(store)
	if err != nil {
		return nil, err
	}
	logger.Debug("api %s, token endpoint %s, %d requests/min",
		cfg.APIBaseURL, cfg.TokenURL, cfg.RequestsPerMinute)

	tokens := oauth.NewRefreshTokenProvider(cfg.TokenURL, cfg.Credentials())
	client, err := zoho.NewClient(tokens, cfg.ClientOptions())
	if err != nil {
		return nil, err
	}
	return zoho.NewRecurringInvoices(client), nil
}
