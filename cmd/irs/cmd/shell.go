package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/shell"
)

func newShellCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Read queries interactively until exit",
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
			return shell.New(e, cmd.InOrStdin(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}
