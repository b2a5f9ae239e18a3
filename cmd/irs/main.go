// Command irs is the command-line front end: build the index, run one-off
// queries, open the interactive query shell, and inspect snapshots.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/cmd/irs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
