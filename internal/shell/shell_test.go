package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
)

type stubSearcher struct {
	queries []string
	results map[string]*engine.Result
}

func (s *stubSearcher) Search(_ context.Context, raw string) *engine.Result {
	s.queries = append(s.queries, raw)
	if r, ok := s.results[raw]; ok {
		return r
	}
	return &engine.Result{Query: raw, Kind: "boolean", Documents: []string{}}
}

func TestRun(t *testing.T) {
	searcher := &stubSearcher{results: map[string]*engine.Result{
		"cats": {Kind: "boolean", Documents: []string{"10", "2", "1"}, TotalHits: 3},
	}}
	in := strings.NewReader("cats\n\n   \nzebra\nEXIT\nnever\n")
	var out bytes.Buffer

	sh := New(searcher, in, &out, WithInteractive(false))
	require.NoError(t, sh.Run(context.Background()))

	assert.Equal(t, []string{"cats", "zebra"}, searcher.queries)
	text := out.String()
	assert.Contains(t, text, "3 matches (boolean, 0ms)")
	assert.Less(t, strings.Index(text, "1"), strings.Index(text, "10"))
	assert.Equal(t, 2, strings.Count(text, "query cannot be empty"))
	assert.Contains(t, text, "No matching documents found.")
	assert.Contains(t, text, "bye")
	assert.NotContains(t, text, prompt, "no prompt when not interactive")
}

func TestRun_EndOfInput(t *testing.T) {
	var out bytes.Buffer
	sh := New(&stubSearcher{}, strings.NewReader("cats"), &out, WithInteractive(false))
	assert.NoError(t, sh.Run(context.Background()))
}

func TestRun_InteractivePrompt(t *testing.T) {
	var out bytes.Buffer
	sh := New(&stubSearcher{}, strings.NewReader("exit\n"), &out, WithInteractive(true))
	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), prompt)
}

func TestRender_Diagnostics(t *testing.T) {
	var out bytes.Buffer
	sh := New(nil, nil, &out, WithInteractive(false))
	sh.Render(&engine.Result{
		Kind:        "proximity",
		Documents:   []string{},
		Diagnostics: []string{"terms not found in positional index: zzz"},
	})
	assert.Contains(t, out.String(), "! terms not found in positional index: zzz")
	assert.Contains(t, out.String(), "No matching documents found.")
}

func TestRender_KeepsDuplicates(t *testing.T) {
	var out bytes.Buffer
	sh := New(nil, nil, &out, WithInteractive(false))
	sh.Render(&engine.Result{Kind: "proximity", Documents: []string{"d7", "d7"}})
	assert.Contains(t, out.String(), "2 matches")
	assert.Equal(t, 2, strings.Count(out.String(), "d7"))
}

func TestNaturalSort(t *testing.T) {
	ids := []string{"10", "abc", "2", "doc3", "1", "zz", "0002"}
	NaturalSort(ids)
	assert.Equal(t, []string{"1", "0002", "2", "doc3", "10", "abc", "zz"}, ids)
}

func TestCompareNumeric_Large(t *testing.T) {
	assert.Equal(t, -1, compareNumeric("99999999999999999999", "100000000000000000000"))
	assert.Equal(t, 0, compareNumeric("0123456789012345678901", "123456789012345678901"))
	assert.Equal(t, 1, compareNumeric("3", "2"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
