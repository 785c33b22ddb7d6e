package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rtzll/vidstudy/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the study pipeline over an HTTP JSON API",
	Long: `Serve the study pipeline over HTTP.

Routes:
  POST /v1/analyze        full report (JSON, or Markdown with Accept: text/markdown)
  POST /v1/summary        summary of {"text": ...}
  POST /v1/key-points     key points of {"text": ...}
  POST /v1/study-guide    study guide from a summary
  POST /v1/topics         recommended topics for a transcript
  POST /v1/quiz           quiz questions from a study guide
  GET  /v1/reports[/{id}] report history
  GET  /v1/cache          response cache counters
  GET  /healthz, /readyz, /metrics`,
	Example: `  # Serve on the configured address (default :8080)
  vidstudy serve

  # Serve on another port
  vidstudy serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.ServerAddr = addr
		}
		config.Quiet = true

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		logger := internal.NewLogger("server")
		handler := internal.NewServer(internal.ServerDeps{
			Analyzer:       app.Analyzer(),
			Metrics:        app.Metrics(),
			MetricsHandler: promhttp.HandlerFor(app.Registry(), promhttp.HandlerOpts{}),
			Logger:         logger,
		})

		srv := &http.Server{
			Addr:              config.ServerAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			logger.Info().Str("addr", srv.Addr).Str("backend", config.Backend).Str("model", config.Model).Msg("vidstudy ready")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			app.RefreshDNS(ctx)
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	internal.AddModelFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server_addr)")
	rootCmd.AddCommand(serveCmd)
}
