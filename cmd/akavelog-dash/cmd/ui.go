package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akave-ai/akavelog-dash/internal/apiclient"
	"github.com/akave-ai/akavelog-dash/internal/controller"
	"github.com/akave-ai/akavelog-dash/internal/metrics"
	"github.com/akave-ai/akavelog-dash/internal/telemetry"
	"github.com/akave-ai/akavelog-dash/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive dashboard.

Keys:
  Tab / Shift-Tab  move between panes
  Enter            send a test log to the selected input
  r                reload the input list
  x                dismiss the error line
  q / Ctrl-C       quit`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	log, closer, err := telemetry.NewLogger(cfg.Observability, true)
	if err != nil {
		return err
	}
	defer closer.Close()

	nrApp, err := telemetry.NewRelic(cfg.Observability, log)
	if err != nil {
		return err
	}
	defer telemetry.ShutdownNewRelic(nrApp)

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithNewRelic(nrApp),
	)

	m := metrics.New()
	if addr := cfg.Observability.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctrl := controller.New(client, controller.Options{
		InputType:      cfg.Form.InputType,
		DefaultTitle:   cfg.Form.DefaultTitle,
		PollInterval:   cfg.Poll.Interval,
		MaxRecentLogs:  cfg.Poll.MaxRecent,
		TestLogService: cfg.Form.TestLogService,
		TestLogSource:  cfg.Form.TestLogSource,
		Logger:         log,
		Metrics:        m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("api", client.BaseURL()).Msg("starting dashboard")
	if err := tui.New(ctrl, client.BaseURL(), log).Run(ctx); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
