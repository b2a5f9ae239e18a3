// Package proximity answers "term1 term2 /n" queries from positional postings.
package proximity

import (
	"fmt"
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/parser"
)

// Match returns one DocID per pair of positions (p1, p2) with
// |p1-p2| <= MaxDistance+1, visiting candidate documents in lexicographic
// order. A document with k qualifying pairs appears k times. Terms are looked
// up exactly as given. The second result holds human-readable diagnostics
// for empty outcomes.
func Match(q parser.Proximity, store *index.Store) ([]string, []string) {
	var missing []string
	for _, term := range []string{q.Term1, q.Term2} {
		if !store.HasPositional(term) {
			missing = append(missing, term)
		}
	}
	if len(missing) > 0 {
		return []string{}, []string{
			"terms not found in positional index: " + strings.Join(missing, ", "),
		}
	}

	candidates := roaring.And(store.PositionalDocuments(q.Term1), store.PositionalDocuments(q.Term2))
	if candidates.IsEmpty() {
		return []string{}, []string{
			fmt.Sprintf("no documents contain both %s and %s", q.Term1, q.Term2),
		}
	}

	limit := q.MaxDistance
	if limit < math.MaxInt {
		limit++
	}
	results := make([]string, 0, candidates.GetCardinality())
	for _, doc := range store.DocIDs(candidates) {
		positions2 := store.Positions(q.Term2, doc)
		for _, p1 := range store.Positions(q.Term1, doc) {
			for _, p2 := range positions2 {
				if distance(p1, p2) <= limit {
					results = append(results, doc)
				}
			}
		}
	}
	return results, nil
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
