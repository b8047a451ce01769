package root

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

	"realmquest/internal/api"
	"realmquest/internal/config"
	"realmquest/internal/engine"
	"realmquest/internal/storage"
	"realmquest/internal/ui"
)

func newServeCmd() *cobra.Command {
	var addr string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			dbPath := cfg.Storage.Path
			if dbPath == "" {
				dbPath, err = storage.ResolveDBPath()
				if err != nil {
					return err
				}
			}
			db, err := storage.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := api.NewServer(engine.NewService(db))
			if cfg.Metrics.Enabled {
				srv.EnableMetrics()
			}
			if d, err := time.ParseDuration(cfg.Server.RequestTimeout); err == nil {
				srv.SetRequestTimeout(d)
			}

			httpSrv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: srv.Handler(),
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconShield, "Serving on "+cfg.Server.Addr))

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-stop:
				shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.realmquest/config.toml)")

	return cmd
}
