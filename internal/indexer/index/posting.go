package index

import "sort"

// InvertedIndex maps term -> document -> occurrence count. Counts are >= 1;
// an absent pair means the term does not occur in the document.
type InvertedIndex map[string]map[string]int

// PositionalIndex maps term -> document -> 1-based, strictly increasing
// token positions.
type PositionalIndex map[string]map[string][]int

// Posting is one document's entry in a term's posting list.
type Posting struct {
	DocID     string `json:"docId"`
	Frequency int    `json:"frequency"`
	Positions []int  `json:"positions,omitempty"`
}

type PostingList []Posting

// TermEntry is a term together with its postings, sorted by DocID.
type TermEntry struct {
	Term     string      `json:"term"`
	Postings PostingList `json:"postings"`
}

// getOrInsert returns m[k], storing mk() first when k is absent.
func getOrInsert[K comparable, V any](m map[K]V, k K, mk func() V) V {
	v, ok := m[k]
	if !ok {
		v = mk()
		m[k] = v
	}
	return v
}

// Add records one more occurrence of term in doc.
func (ix InvertedIndex) Add(term, doc string) {
	docs := getOrInsert(ix, term, func() map[string]int { return make(map[string]int) })
	docs[doc]++
}

// Count returns the occurrences of term in doc, zero when absent.
func (ix InvertedIndex) Count(term, doc string) int {
	return ix[term][doc]
}

// DocIDs returns every document referenced by the index, sorted.
func (ix InvertedIndex) DocIDs() []string {
	seen := make(map[string]struct{})
	for _, docs := range ix {
		for doc := range docs {
			seen[doc] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Append records term at position pos in doc. Callers feed positions in
// scan order so each list stays strictly increasing.
func (px PositionalIndex) Append(term, doc string, pos int) {
	docs := getOrInsert(px, term, func() map[string][]int { return make(map[string][]int) })
	docs[doc] = append(docs[doc], pos)
}

// DocIDs returns every document referenced by the index, sorted.
func (px PositionalIndex) DocIDs() []string {
	seen := make(map[string]struct{})
	for _, docs := range px {
		for doc := range docs {
			seen[doc] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
