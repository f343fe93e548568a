package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

var inputsCmd = &cobra.Command{
	Use:     "inputs",
	Aliases: []string{"ls"},
	Short:   "List provisioned inputs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := newClient().ListInputs(cmd.Context())
		if err != nil {
			return err
		}
		return NewPrinter().PrintInputs(items)
	},
}

var (
	createTitle  string
	createType   string
	createConfig []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new input",
	Long: `Provision a new input.

Examples:
  # HTTP input receiving at /ingest/web-logs
  akavelog-dash create --title web --config description=web-logs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := model.CreateInputRequest{
			Type:  createType,
			Title: createTitle,
		}
		if req.Type == "" {
			req.Type = cfg.Form.InputType
		}
		if len(createConfig) > 0 {
			req.Config = make(map[string]any, len(createConfig))
			for _, kv := range createConfig {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid --config %q, want key=value", kv)
				}
				req.Config[k] = v
			}
		}
		item, err := newClient().CreateInput(cmd.Context(), req)
		if err != nil {
			return err
		}
		return NewPrinter().PrintInputs([]model.InputItem{item})
	},
}

func init() {
	rootCmd.AddCommand(inputsCmd, createCmd)
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "Input title")
	createCmd.Flags().StringVar(&createType, "type", "", "Input type (defaults to the configured form type)")
	createCmd.Flags().StringArrayVarP(&createConfig, "config", "c", nil, "Configuration entry key=value, repeatable")
}
