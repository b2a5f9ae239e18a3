// Package index holds the inverted and positional indexes and the immutable
// Store the query engine evaluates against.
package index

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
)

// Store is a read-only view over one corpus snapshot. Every document gets a
// dense ordinal in lexicographic DocID order, so iterating any bitmap the
// Store hands out yields sorted DocIDs. Bitmaps returned by the Store are
// shared and must not be modified.
type Store struct {
	docs       []string
	ordinals   map[string]uint32
	inverted   InvertedIndex
	positional PositionalIndex
	termDocs   map[string]*roaring.Bitmap
	posDocs    map[string]*roaring.Bitmap
	universe   *roaring.Bitmap
	generation string
}

// Stats summarizes a Store.
type Stats struct {
	Documents           int    `json:"documents"`
	InvertedTerms       int    `json:"invertedTerms"`
	PositionalTerms     int    `json:"positionalTerms"`
	PositionalDocuments int    `json:"positionalDocuments"`
	Generation          string `json:"generation"`
}

type Option func(*Store)

// WithGeneration sets the identifier used to tell snapshots apart, for
// example in cache keys. Without it a random identifier is assigned.
func WithGeneration(gen string) Option {
	return func(s *Store) {
		if gen != "" {
			s.generation = gen
		}
	}
}

// NewStore indexes inv and pos into bitmaps. Either index may be nil. The
// corpus universe is the set of documents present in inv.
func NewStore(inv InvertedIndex, pos PositionalIndex, opts ...Option) *Store {
	if inv == nil {
		inv = InvertedIndex{}
	}
	if pos == nil {
		pos = PositionalIndex{}
	}

	all := make(map[string]struct{})
	for _, id := range inv.DocIDs() {
		all[id] = struct{}{}
	}
	for _, id := range pos.DocIDs() {
		all[id] = struct{}{}
	}
	docs := sortedKeys(all)
	ordinals := make(map[string]uint32, len(docs))
	for i, id := range docs {
		ordinals[id] = uint32(i)
	}

	s := &Store{
		docs:       docs,
		ordinals:   ordinals,
		inverted:   inv,
		positional: pos,
		termDocs:   make(map[string]*roaring.Bitmap, len(inv)),
		posDocs:    make(map[string]*roaring.Bitmap, len(pos)),
		universe:   roaring.New(),
		generation: uuid.NewString(),
	}
	for term, postings := range inv {
		bm := roaring.New()
		for doc := range postings {
			bm.Add(ordinals[doc])
		}
		bm.RunOptimize()
		s.termDocs[term] = bm
		s.universe.Or(bm)
	}
	for term, postings := range pos {
		bm := roaring.New()
		for doc := range postings {
			bm.Add(ordinals[doc])
		}
		bm.RunOptimize()
		s.posDocs[term] = bm
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentsContaining returns the documents whose inverted postings include
// term, or an empty bitmap.
func (s *Store) DocumentsContaining(term string) *roaring.Bitmap {
	if bm, ok := s.termDocs[term]; ok {
		return bm
	}
	return roaring.New()
}

// PositionalDocuments returns the documents with positional postings for term.
func (s *Store) PositionalDocuments(term string) *roaring.Bitmap {
	if bm, ok := s.posDocs[term]; ok {
		return bm
	}
	return roaring.New()
}

// HasPositional reports whether term appears in the positional index.
func (s *Store) HasPositional(term string) bool {
	_, ok := s.posDocs[term]
	return ok
}

// Universe is every document in the inverted index.
func (s *Store) Universe() *roaring.Bitmap {
	return s.universe
}

// DocIDs converts bm back to DocIDs in lexicographic order. The result is
// never nil.
func (s *Store) DocIDs(bm *roaring.Bitmap) []string {
	if bm == nil {
		return []string{}
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ord := it.Next()
		if int(ord) < len(s.docs) {
			out = append(out, s.docs[ord])
		}
	}
	return out
}

// Positions returns term's positions in doc, or nil.
func (s *Store) Positions(term, doc string) []int {
	return s.positional[term][doc]
}

// Count returns the occurrences of term in doc from the inverted index.
func (s *Store) Count(term, doc string) int {
	return s.inverted.Count(term, doc)
}

// Postings merges what both indexes know about term. Frequency comes from the
// inverted index and Positions from the positional index; a document listed
// by only one of them has the other field empty.
func (s *Store) Postings(term string) TermEntry {
	byDoc := make(map[string]*Posting)
	for doc, n := range s.inverted[term] {
		byDoc[doc] = &Posting{DocID: doc, Frequency: n}
	}
	for doc, positions := range s.positional[term] {
		p := getOrInsert(byDoc, doc, func() *Posting { return &Posting{DocID: doc} })
		p.Positions = positions
	}
	list := make(PostingList, 0, len(byDoc))
	for _, p := range byDoc {
		list = append(list, *p)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].DocID < list[j].DocID
	})
	return TermEntry{Term: term, Postings: list}
}

// Generation identifies the snapshot the Store was built from.
func (s *Store) Generation() string {
	return s.generation
}

func (s *Store) Stats() Stats {
	return Stats{
		Documents:           int(s.universe.GetCardinality()),
		InvertedTerms:       len(s.inverted),
		PositionalTerms:     len(s.positional),
		PositionalDocuments: len(s.positional.DocIDs()),
		Generation:          s.generation,
	}
}
