package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/snapshot"
)

func newIndexCmd(global *globalOptions) *cobra.Command {
	var corpusDir, exportDir string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the index snapshots from the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if corpusDir != "" {
				cfg.Corpus.Dir = corpusDir
			}
			pipeline, err := analysis.New(cfg.Analysis, nil)
			if err != nil {
				return err
			}

			var opts []indexer.Option
			if exportDir != "" {
				opts = append(opts, indexer.WithJSONExport(exportDir))
			}
			ix := indexer.New(
				corpus.NewReader(cfg.Corpus),
				pipeline,
				snapshot.NewWriter(cfg.Index.DataDir, cfg.Index.LockTimeout),
				opts...,
			)
			res, err := ix.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "skipped %s: %s\n", s.Path, s.Reason)
			}
			fmt.Fprintf(out, "indexed %d documents (%d terms, %d positional terms) into %s in %s\n",
				res.Documents, res.InvertedTerms, res.PositionalTerms, cfg.Index.DataDir, res.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&corpusDir, "corpus", "", "Corpus directory (overrides corpus.dir)")
	cmd.Flags().StringVar(&exportDir, "export-json", "", "Also write human-readable JSON indexes into this directory")
	return cmd
}
