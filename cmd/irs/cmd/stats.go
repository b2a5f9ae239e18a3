package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the loaded index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range e.Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			s := e.Store().Stats()
			fmt.Fprintf(out, "documents:            %d\n", s.Documents)
			fmt.Fprintf(out, "inverted terms:       %d\n", s.InvertedTerms)
			fmt.Fprintf(out, "positional terms:     %d\n", s.PositionalTerms)
			fmt.Fprintf(out, "positional documents: %d\n", s.PositionalDocuments)
			fmt.Fprintf(out, "generation:           %s\n", s.Generation)
			return nil
		},
	}
}
