package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/akave-ai/akavelog-dash/internal/model"
)

var (
	sendLevel string
	sendTags  []string
)

var sendCmd = &cobra.Command{
	Use:   "send <ingest-path> [message]",
	Short: "Send a log to an input's ingest path",
	Long: `Send a log to an input's ingest path.
Without a message a timestamped test message is sent, the same one the
dashboard sends on Enter.

Examples:
  akavelog-dash send web-logs
  akavelog-dash send web-logs "payment failed" --level error --tag region=eu`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := strings.TrimPrefix(strings.TrimPrefix(args[0], "/ingest"), "/")
		payload := model.IngestPayload{
			Service: cfg.Form.TestLogService,
			Level:   sendLevel,
			Message: "Test log at " + time.Now().UTC().Format(time.RFC3339),
			Tags:    map[string]string{},
		}
		if len(args) == 2 {
			payload.Message = args[1]
		}
		if cfg.Form.TestLogSource != "" {
			payload.Tags["source"] = cfg.Form.TestLogSource
		}
		for _, kv := range sendTags {
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return fmt.Errorf("invalid --tag %q, want key=value", kv)
			}
			payload.Tags[k] = v
		}
		if err := validator.New().Struct(payload); err != nil {
			return fmt.Errorf("invalid log: %w", err)
		}
		if err := newClient().SendLog(cmd.Context(), path, payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent to /ingest/%s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendLevel, "level", "l", "info", "Log level: debug, info, warn or error")
	sendCmd.Flags().StringArrayVar(&sendTags, "tag", nil, "Tag key=value, repeatable")
}
