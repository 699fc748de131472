package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a template from a prompt and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			if offline {
				res, err := gen.Fallback(prompt)
				if err != nil {
					return err
				}
				return writeJSON(cmd, res)
			}
			res, err := gen.Generate(cmd.Context(), prompt)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "skip the generation service (same as --no-llm)")
	return cmd
}
