package proximity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/parser"
)

func store(entries map[string]map[string][]int) *index.Store {
	pos := index.PositionalIndex{}
	for term, docs := range entries {
		for doc, positions := range docs {
			for _, p := range positions {
				pos.Append(term, doc, p)
			}
		}
	}
	return index.NewStore(nil, pos)
}

func TestMatch_DuplicatesPerPair(t *testing.T) {
	s := store(map[string]map[string][]int{
		"feature":   {"d": {1, 5}},
		"selection": {"d": {2, 6}},
	})
	docs, diags := Match(parser.Proximity{Term1: "feature", Term2: "selection", MaxDistance: 1}, s)
	assert.Equal(t, []string{"d", "d"}, docs)
	assert.Empty(t, diags)
}

func TestMatch_ToleranceIsDistancePlusOne(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d": {1}},
		"b": {"d": {3}},
	})
	docs, _ := Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: 1}, s)
	assert.Equal(t, []string{"d"}, docs, "distance 2 is within 1+1")

	docs, _ = Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: 0}, s)
	assert.Equal(t, []string{}, docs)
}

func TestMatch_OrderIsIrrelevantAndSymmetric(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d": {10}},
		"b": {"d": {8}},
	})
	docs, _ := Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: 1}, s)
	assert.Equal(t, []string{"d"}, docs)
	docs, _ = Match(parser.Proximity{Term1: "b", Term2: "a", MaxDistance: 1}, s)
	assert.Equal(t, []string{"d"}, docs)
}

func TestMatch_CandidatesInLexicographicOrder(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"10": {1}, "9": {1}, "2": {1}, "only-a": {1}},
		"b": {"10": {2}, "9": {2}, "2": {9}},
	})
	docs, diags := Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: 0}, s)
	assert.Equal(t, []string{"10", "9"}, docs)
	assert.Empty(t, diags)
}

func TestMatch_MissingTerm(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d": {1}},
	})
	docs, diags := Match(parser.Proximity{Term1: "a", Term2: "zzz", MaxDistance: 5}, s)
	assert.Equal(t, []string{}, docs)
	assert.Equal(t, []string{"terms not found in positional index: zzz"}, diags)

	_, diags = Match(parser.Proximity{Term1: "x", Term2: "y", MaxDistance: 5}, s)
	assert.Equal(t, []string{"terms not found in positional index: x, y"}, diags)
}

func TestMatch_NoCommonDocuments(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d1": {1}},
		"b": {"d2": {1}},
	})
	docs, diags := Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: 5}, s)
	assert.Equal(t, []string{}, docs)
	assert.Equal(t, []string{"no documents contain both a and b"}, diags)
}

func TestMatch_SameTermTwice(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d": {1, 2}},
	})
	// Every pair including (p, p) is compared.
	docs, _ := Match(parser.Proximity{Term1: "a", Term2: "a", MaxDistance: 0}, s)
	assert.Len(t, docs, 4)
}

func TestMatch_HugeDistance(t *testing.T) {
	s := store(map[string]map[string][]int{
		"a": {"d": {1}},
		"b": {"d": {1000}},
	})
	docs, _ := Match(parser.Proximity{Term1: "a", Term2: "b", MaxDistance: math.MaxInt}, s)
	assert.Equal(t, []string{"d"}, docs)
}
