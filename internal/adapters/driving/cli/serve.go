package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klartext/klartext/internal/adapters/driving/httpapi"
	"github.com/klartext/klartext/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Exposes POST /v1/simplify, POST /v1/tts and GET /healthz. The server
shuts down gracefully on SIGINT or SIGTERM, draining in-flight requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: config server.addr or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := bootstrap(); err != nil {
		return err
	}

	// Surface unreachable providers at startup without refusing to serve:
	// a model service may come up after us.
	for _, err := range providerSet.Validate(cmd.Context()) {
		logger.Warn("%v", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.ServerAddr
	}

	server := httpapi.New(httpapi.Config{
		Addr:            addr,
		RateLimit:       settings.RateLimit,
		RequestDeadline: settings.RequestDeadline,
	}, simplifyService, ttsService, providerSet)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
