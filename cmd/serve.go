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
	"go.uber.org/zap"

	"dealerhub/config"
	"dealerhub/web"
)

var (
	servePort        int
	serveMaxUploadMB int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP import API",
	Long: `Start an HTTP server exposing the importer to the upload UI.

Endpoints:
- POST /api/import/{kind}     multipart "file" (csv/xlsx) or raw CSV body
- GET  /api/schema/{kind}     column rules
- GET  /api/template/{kind}   empty template (?format=xlsx for Excel)
- GET  /api/records/{kind}    imported records
- GET  /api/summary           record counts per kind and status
- GET  /healthz               storage reachability`,
	Example: `
  # Start on the configured port (server.port, default 8080)
  dealerhub serve

  # Start on a custom port against MongoDB
  DEALERHUB_STORE_BACKEND=mongo dealerhub serve --port 9090
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.close()

		store, err := rt.openStore(commandContext(cmd))
		if err != nil {
			return err
		}
		defer store.Close()

		port := resolveServePort(servePort, rt.cfg)
		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           web.NewServer(store, rt.logger, webOptions(rt.cfg, serveMaxUploadMB)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		rt.logger.Info("server listening",
			zap.Int("port", port),
			zap.String("backend", rt.cfg.Store.Backend),
		)
		fmt.Printf("Listening on http://localhost:%d\n", port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			rt.logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: server.port from config)")
	serveCmd.Flags().IntVar(&serveMaxUploadMB, "max-upload-mb", 32, "Maximum accepted upload size in MiB")
}

func resolveServePort(flagPort int, cfg *config.Config) int {
	if flagPort > 0 {
		return flagPort
	}
	if cfg != nil && cfg.Server.Port > 0 {
		return cfg.Server.Port
	}
	return 8080
}

func webOptions(cfg *config.Config, maxUploadMB int) web.Options {
	opts := web.Options{
		Workers:        cfg.Import.Workers,
		MaxBatchWrites: cfg.Store.MaxBatchWrites,
		ListDelimiter:  cfg.Import.ListDelimiter,
		CommitTimeout:  cfg.Import.CommitTimeout,
	}
	if maxUploadMB > 0 {
		opts.MaxUploadBytes = int64(maxUploadMB) << 20
	}
	return opts
}
