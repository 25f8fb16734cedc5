package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardscrub/internal/config"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change non-secret settings such as the API data centre and the
request throttle. Settings live in a TOML file; CARDSCRUB_<KEY> environment
variables override them.

Credentials are never stored here. They come from the environment or the
--env-file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	store, err := settingsStoreFactory()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Settings]")
	effective := config.Effective(store)
	for _, s := range config.Settings {
		source := config.Source(store, s.Key)
		cmd.Printf("  %s: %v %s\n", s.Key, effective[s.Key], styles.Muted.Render("("+source+")"))
	}
	cmd.Printf("  File: %s\n", store.Path())
	cmd.Println()

	cmd.Println("[Credentials]")
	if err := config.LoadEnvFile(envFile); err != nil {
		cmd.Printf("  %s\n", styles.Warning.Render(err.Error()))
	}
	for _, key := range []string{
		config.EnvRefreshToken, config.EnvClientID, config.EnvClientSecret, config.EnvOrganisationID,
	} {
		val := os.Getenv(key)
		if val == "" && key == config.EnvOrganisationID {
			val = os.Getenv(config.EnvOrganizationID)
		}
		if val == "" {
			cmd.Printf("  %s: (not set)\n", key)
			continue
		}
		cmd.Printf("  %s: %s\n", key, maskSecret(val))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	value, err := config.ParseValue(key, raw)
	if err != nil {
		return err
	}

	store, err := settingsStoreFactory()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s set to %v\n", key, value)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	s, ok := config.Lookup(key)
	if !ok {
		_, err := config.ParseValue(key, "")
		return err
	}

	store, err := settingsStoreFactory()
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	if err := store.Unset(key); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("%s reset to default (%v)\n", key, s.Default)
	return nil
}

// maskSecret shows the first and last four characters of long values only.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
