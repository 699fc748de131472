package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/livetemplate/mailcraft/internal/render"
	"github.com/livetemplate/mailcraft/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <document-id>",
		Short: "Render a stored document as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			backend, err := store.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer backend.Close()

			doc, err := backend.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := render.New()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return r.Document(w, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write HTML to this file instead of stdout")
	return cmd
}
