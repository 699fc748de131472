package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/livetemplate/mailcraft/internal/server"
	"github.com/livetemplate/mailcraft/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Catalog.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend, err := store.Open(ctx, cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer backend.Close()

			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, store.NewDocuments(backend), gen)
			if err != nil {
				return err
			}
			defer srv.Close()

			if cfg.Catalog.File != "" && cfg.Catalog.Watch {
				if err := srv.EnableWatch(cfg.Catalog.File); err != nil {
					return err
				}
			}

			httpServer := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           srv.Handler(ctx),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Mailcraft server running at http://%s\n", cfg.Server.Addr())
			fmt.Fprintf(cmd.OutOrStdout(), "Storage: %s\n", cfg.Storage.GetDriver())
			if cfg.LLM.Disabled {
				fmt.Fprintf(cmd.OutOrStdout(), "Generation: keyword catalog only\n")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Generation: %s (%s)\n", cfg.LLM.GetEndpoint(), cfg.LLM.GetModel())
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("[Server] Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&app.Overrides.Host, "host", "", "listen host")
	cmd.Flags().IntVarP(&app.Overrides.Port, "port", "p", 0, "listen port")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the catalog file when it changes")
	return cmd
}
