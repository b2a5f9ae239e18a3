package index

import (
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore() *Store {
	inv := InvertedIndex{}
	inv.Add("cat", "doc2")
	inv.Add("cat", "doc1")
	inv.Add("cat", "doc1")
	inv.Add("dog", "doc3")

	pos := PositionalIndex{}
	pos.Append("the", "doc1", 1)
	pos.Append("cats", "doc1", 2)
	pos.Append("cats", "doc1", 5)
	pos.Append("cats", "doc4", 1)
	return NewStore(inv, pos, WithGeneration("gen-1"))
}

func TestInvertedIndex_Add(t *testing.T) {
	inv := InvertedIndex{}
	inv.Add("a", "x")
	inv.Add("a", "x")
	inv.Add("a", "y")

	assert.Equal(t, 2, inv.Count("a", "x"))
	assert.Equal(t, 1, inv.Count("a", "y"))
	assert.Equal(t, 0, inv.Count("a", "z"))
	assert.Equal(t, 0, inv.Count("missing", "x"))
	_, stored := inv["a"]["z"]
	assert.False(t, stored, "absent pairs are never stored")
}

func TestPositionalIndex_Append(t *testing.T) {
	pos := PositionalIndex{}
	pos.Append("a", "x", 1)
	pos.Append("a", "x", 4)
	assert.Equal(t, []int{1, 4}, pos["a"]["x"])
	assert.Equal(t, []string{"x"}, pos.DocIDs())
}

func TestStore_DocumentsContaining(t *testing.T) {
	s := sampleStore()

	assert.Equal(t, []string{"doc1", "doc2"}, s.DocIDs(s.DocumentsContaining("cat")))
	assert.Equal(t, []string{}, s.DocIDs(s.DocumentsContaining("missing")))
}

func TestStore_UniverseIsInvertedDocsOnly(t *testing.T) {
	s := sampleStore()
	// doc4 only has positional postings.
	assert.Equal(t, []string{"doc1", "doc2", "doc3"}, s.DocIDs(s.Universe()))
	assert.Equal(t, []string{"doc1", "doc4"}, s.DocIDs(s.PositionalDocuments("cats")))
}

func TestStore_DocIDsSortedLexicographically(t *testing.T) {
	inv := InvertedIndex{}
	for _, id := range []string{"10", "9", "1", "100"} {
		inv.Add("t", id)
	}
	s := NewStore(inv, nil)
	assert.Equal(t, []string{"1", "10", "100", "9"}, s.DocIDs(s.DocumentsContaining("t")))
}

func TestStore_Positions(t *testing.T) {
	s := sampleStore()
	assert.Equal(t, []int{2, 5}, s.Positions("cats", "doc1"))
	assert.Nil(t, s.Positions("cats", "doc2"))
	assert.True(t, s.HasPositional("cats"))
	assert.False(t, s.HasPositional("cat"))
}

func TestStore_Postings(t *testing.T) {
	s := sampleStore()
	entry := s.Postings("cats")
	require.Len(t, entry.Postings, 2)
	assert.Equal(t, Posting{DocID: "doc1", Positions: []int{2, 5}}, entry.Postings[0])
	assert.Equal(t, "doc4", entry.Postings[1].DocID)

	entry = s.Postings("cat")
	require.Len(t, entry.Postings, 2)
	assert.Equal(t, 2, entry.Postings[0].Frequency)
}

func TestStore_Stats(t *testing.T) {
	s := sampleStore()
	assert.Equal(t, Stats{
		Documents:           3,
		InvertedTerms:       2,
		PositionalTerms:     2,
		PositionalDocuments: 2,
		Generation:          "gen-1",
	}, s.Stats())
}

func TestStore_EmptyIndexes(t *testing.T) {
	s := NewStore(nil, nil)
	assert.True(t, s.Universe().IsEmpty())
	assert.NotEmpty(t, s.Generation())
	assert.Equal(t, []string{}, s.DocIDs(nil))
}

func TestStore_OperationsDoNotMutateStoredBitmaps(t *testing.T) {
	s := sampleStore()
	before := s.DocumentsContaining("cat").Clone()
	_ = roaring.AndNot(s.Universe(), s.DocumentsContaining("cat"))
	_ = roaring.Or(s.DocumentsContaining("cat"), s.DocumentsContaining("dog"))
	assert.True(t, before.Equals(s.DocumentsContaining("cat")))
}
