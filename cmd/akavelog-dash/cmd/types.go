package cmd

import (
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the input types the backend supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := newClient().ListTypes(cmd.Context())
		if err != nil {
			return err
		}
		return NewPrinter().PrintTypes(types)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema [type]",
	Short: "Show the configuration fields of an input type",
	Long: `Show the configuration fields of an input type.
The type defaults to the one the dashboard form creates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName := cfg.Form.InputType
		if len(args) == 1 {
			typeName = args[0]
		}
		info, err := newClient().GetTypeInfo(cmd.Context(), typeName)
		if err != nil {
			return err
		}
		return NewPrinter().PrintTypeInfo(info)
	},
}

func init() {
	rootCmd.AddCommand(typesCmd, schemaCmd)
}
