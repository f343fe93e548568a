package cmd

import (
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the backend's recent logs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, err := newClient().RecentLogs(cmd.Context())
		if err != nil {
			return err
		}
		return NewPrinter().PrintLogs(logs)
	},
}

var statusFlush bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the upload batcher status",
	Long: `Print the upload batcher status.
With --flush the stub backend uploads its pending batch first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if statusFlush {
			st, err := client.FlushUploads(cmd.Context())
			if err != nil {
				return err
			}
			return NewPrinter().PrintStatus(st)
		}
		st, err := client.UploadStatus(cmd.Context())
		if err != nil {
			return err
		}
		return NewPrinter().PrintStatus(st)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd, statusCmd)
	statusCmd.Flags().BoolVar(&statusFlush, "flush", false, "Flush pending logs before printing (stub backend only)")
}
