package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livetemplate/mailcraft/internal/generate"
)

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the fallback template categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			catalog := generate.DefaultCatalog()
			if cfg.Catalog.File != "" {
				if catalog, err = generate.LoadCatalog(cfg.Catalog.File); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tMATCH\tBLOCKS")
			for _, c := range catalog.Categories {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, describeMatch(c.Match), describeBlocks(c.Blocks))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := generate.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d categories OK\n", args[0], len(catalog.Categories))
			return nil
		},
	})
	return cmd
}

// describeMatch renders match groups as "a|b + c".
func describeMatch(groups [][]string) string {
	if len(groups) == 0 {
		return "*"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strings.Join(g, "|")
	}
	return strings.Join(parts, " + ")
}

func describeBlocks(blocks []map[string]any) string {
	types := make([]string, len(blocks))
	for i, b := range blocks {
		types[i] = fmt.Sprint(b["type"])
	}
	return strings.Join(types, ", ")
}
