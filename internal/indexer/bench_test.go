package indexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
)

func generateDocs(n int) (map[string][]string, map[string]string) {
	words := []string{
		"boolean", "retrieval", "index", "posting", "query", "term",
		"document", "corpus", "proximity", "position", "stem", "token",
	}
	tokenized := make(map[string][]string, n)
	raw := make(map[string]string, n)
	for i := 0; i < n; i++ {
		terms := make([]string, 0, 200)
		for j := 0; j < 200; j++ {
			terms = append(terms, words[(i*7+j*13)%len(words)])
		}
		id := fmt.Sprintf("%d", i)
		tokenized[id] = terms
		raw[id] = strings.Join(terms, " ")
	}
	return tokenized, raw
}

func BenchmarkBuildInvertedIndex(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		tokenized, _ := generateDocs(n)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = BuildInvertedIndex(tokenized)
			}
		})
	}
}

func BenchmarkBuildPositionalIndex(b *testing.B) {
	_, raw := generateDocs(100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = BuildPositionalIndex(raw, analysis.PositionalTokens)
	}
}
