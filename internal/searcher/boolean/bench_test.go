package boolean

import (
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
)

func benchStore(docs int) *index.Store {
	inv := index.InvertedIndex{}
	for i := 0; i < docs; i++ {
		id := fmt.Sprintf("doc%06d", i)
		inv.Add("all", id)
		if i%2 == 0 {
			inv.Add("even", id)
		}
		if i%3 == 0 {
			inv.Add("third", id)
		}
	}
	return index.NewStore(inv, nil)
}

func BenchmarkEvaluate(b *testing.B) {
	for _, n := range []int{1000, 10000, 100000} {
		store := benchStore(n)
		tokens := toks("even", "OR", "third", "AND", "NOT", "all")
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Evaluate(tokens, store)
			}
		})
	}
}
