// Package commands implements the mailcraft CLI.
package commands

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/livetemplate/mailcraft/internal/config"
	"github.com/livetemplate/mailcraft/internal/generate"
	"github.com/livetemplate/mailcraft/internal/llm"
)

// App holds the flags shared by every command.
type App struct {
	ConfigPath string
	Overrides  config.Overrides
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mailcraft",
		Short:        "Email and landing-page builder backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the API on localhost:8080
  mailcraft serve

  # Generate a template without calling the model
  mailcraft generate --no-llm "a welcome email for new users"

  # Show the fallback catalog
  mailcraft catalog
`),
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&app.ConfigPath, "config", "c", "", "config file (default ./"+config.FileName+")")
	flags.BoolVar(&app.Overrides.Debug, "debug", false, "verbose logging")
	flags.StringVar(&app.Overrides.LLMEndpoint, "llm-endpoint", "", "generation service endpoint")
	flags.BoolVar(&app.Overrides.LLMDisabled, "no-llm", false, "always use the keyword catalog")
	flags.StringVar(&app.Overrides.StorageDriver, "storage", "", "document store: memory, sqlite, postgres or redis")
	flags.StringVar(&app.Overrides.StorageDSN, "dsn", "", "document store connection string or path")
	flags.StringVar(&app.Overrides.CatalogFile, "catalog", "", "fallback catalog YAML file")

	cmd.AddCommand(
		newServeCmd(app),
		newGenerateCmd(app),
		newCatalogCmd(app),
		newExportCmd(app),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the config file, applies flag overrides and validates.
func (a *App) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.Load(a.ConfigPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Apply(a.Overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newGenerator wires the generation service and catalog from cfg.
func newGenerator(cfg *config.Config) (*generate.Generator, error) {
	var catalog *generate.Catalog
	if cfg.Catalog.File != "" {
		c, err := generate.LoadCatalog(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	var service generate.Completer
	if !cfg.LLM.Disabled {
		service = llm.New("model", cfg.LLM)
	}
	return generate.New(service, catalog), nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	log.SetFlags(0) // Remove timestamp from logs
}
