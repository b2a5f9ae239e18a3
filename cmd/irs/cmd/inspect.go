package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInspectCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <term>",
		Short: "Show the postings stored for a term",
		Long: `Show what both indexes hold for a term: the occurrence count per
document from the inverted index and the token positions from the
positional index. The term is looked up exactly as given, lowercased.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}
			entry := e.Store().Postings(strings.ToLower(args[0]))
			if len(entry.Postings) == 0 {
				return fmt.Errorf("term %q not found in index", entry.Term)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entry)
		},
	}
}
