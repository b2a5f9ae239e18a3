package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/loadtest"
)

func newLoadTestCmd() *cobra.Command {
	var cfg loadtest.Config

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Send concurrent queries to a running search service",
		Long: `Send queries round-robin from several workers to GET /api/v1/search and
report latency percentiles, status codes, cache hits and empty results.

Examples:
  irs loadtest --url http://localhost:8080 --concurrency 20 --duration 1m
  irs loadtest -q "cats and dogs" -q "cats dogs /2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := loadtest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			loadtest.Print(cmd.OutOrStdout(), rep)
			if rep.Requests == rep.Errors {
				return errors.New("no request succeeded; is the search service running?")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Base URL of the search service")
	cmd.Flags().IntVarP(&cfg.Concurrency, "concurrency", "c", 10, "Number of concurrent workers")
	cmd.Flags().DurationVarP(&cfg.Duration, "duration", "d", 30*time.Second, "How long to send queries")
	cmd.Flags().StringArrayVarP(&cfg.Queries, "query", "q", nil, fmt.Sprintf("Query to send (repeatable; %d built-in queries when omitted)", len(loadtest.DefaultQueries)))
	return cmd
}
