package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/shell"
)

type queryOptions struct {
	format string
}

func newQueryCmd(global *globalOptions) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "Run a single boolean or proximity query",
		Long: `Run a single query and print the matching document IDs.

Boolean queries combine terms with and, or and not. A query shaped like
"term1 term2 /k" finds documents where the two words occur at most k
positions apart.

Examples:
  irs query "cats and dogs"
  irs query "not birds"
  irs query "cats dogs /2" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			e, err := openEngine(cfg)
			if err != nil {
				return err
			}

			res := e.Search(cmd.Context(), strings.Join(args, " "))
			switch opts.format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			case "text":
				shell.New(e, nil, cmd.OutOrStdout()).Render(res)
				return nil
			default:
				return fmt.Errorf("unknown format %q: want text or json", opts.format)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}
