// Package cmd implements the akavelog-dash command line: the interactive
// dashboard plus a few scriptable subcommands against the same backend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akave-ai/akavelog-dash/internal/apiclient"
	"github.com/akave-ai/akavelog-dash/internal/config"
)

var (
	apiURL string
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "akavelog-dash",
	Short: "Terminal dashboard for akavelog",
	Long: `akavelog-dash provisions log inputs, sends test logs and watches
recent logs and upload status of an akavelog backend.

Run without a subcommand to open the interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if apiURL != "" {
			c.API.BaseURL = apiURL
		}
		cfg = c
		return nil
	},
	RunE: runUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend base URL (overrides AKAVELOG_API__BASE_URL)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// newClient builds an API client for the scriptable subcommands.
func newClient() *apiclient.Client {
	return apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(cfg.API.Timeout))
}
