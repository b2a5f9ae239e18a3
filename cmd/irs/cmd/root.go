// Package cmd provides the irs CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:   "irs",
		Short: "Boolean and proximity retrieval over a local text corpus",
		Long: `irs builds an inverted and a positional index over a directory of
text files and answers boolean (AND, OR, NOT) and proximity ("a b /k")
queries against them.

Examples:
  irs index --corpus Abstracts
  irs query "cats and not dogs"
  irs query "information retrieval /3"
  irs shell`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (defaults are used when empty)")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Snapshot directory (overrides index.dataDir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(newIndexCmd(&opts))
	cmd.AddCommand(newQueryCmd(&opts))
	cmd.AddCommand(newShellCmd(&opts))
	cmd.AddCommand(newInspectCmd(&opts))
	cmd.AddCommand(newStatsCmd(&opts))
	cmd.AddCommand(newLoadTestCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Index.DataDir = opts.dataDir
	}
	return cfg, nil
}

// openEngine loads the snapshots named by cfg. A missing index is not an
// error: the engine starts empty and reports it as a diagnostic.
func openEngine(cfg *config.Config) (*engine.Engine, error) {
	pipeline, err := analysis.New(cfg.Analysis, nil)
	if err != nil {
		return nil, err
	}
	return engine.Open(cfg.Index.DataDir, pipeline, engine.WithMaxQueryLength(cfg.Search.MaxQueryLength))
}
