package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []any
}

func (r *recordingTracker) Track(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestBuildInvertedIndex_ExactCounts(t *testing.T) {
	inv := BuildInvertedIndex(map[string][]string{
		"d1": {"cat", "dog", "cat"},
		"d2": {"dog"},
		"d3": {},
	})

	assert.Equal(t, index.InvertedIndex{
		"cat": {"d1": 2},
		"dog": {"d1": 1, "d2": 1},
	}, inv)
}

func TestBuildPositionalIndex_StrictlyIncreasing(t *testing.T) {
	pos := BuildPositionalIndex(map[string]string{
		"d1": "the cat saw the other cat",
		"d2": "Cat",
	}, analysis.PositionalTokens)

	assert.Equal(t, []int{2, 6}, pos["cat"]["d1"])
	assert.Equal(t, []int{1}, pos["cat"]["d2"])
	assert.Equal(t, []int{1, 4}, pos["the"]["d1"])

	for term, docs := range pos {
		for doc, positions := range docs {
			require.NotEmpty(t, positions)
			assert.GreaterOrEqual(t, positions[0], 1, "%s/%s", term, doc)
			for i := 1; i < len(positions); i++ {
				assert.Greater(t, positions[i], positions[i-1], "%s/%s", term, doc)
			}
		}
	}
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"1.txt": "Cats chase mice. The cats run.",
		"2.txt": "Dogs chase cats",
		"3.txt": "the of and",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}
	return dir
}

func newIndexer(t *testing.T, corpusDir, dataDir string, opts ...Option) *Indexer {
	t.Helper()
	pipeline, err := analysis.New(config.AnalysisConfig{}, nil)
	require.NoError(t, err)
	return New(
		corpus.NewReader(config.CorpusConfig{Dir: corpusDir, ReadConcurrency: 2}),
		pipeline,
		snapshot.NewWriter(dataDir, time.Second),
		opts...,
	)
}

func TestIndexer_Run(t *testing.T) {
	corpusDir := writeCorpus(t)
	dataDir := t.TempDir()
	exportDir := t.TempDir()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tracker := &recordingTracker{}

	ix := newIndexer(t, corpusDir, dataDir, WithMetrics(m), WithTracker(tracker), WithJSONExport(exportDir))
	res, err := ix.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Documents)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, 2, res.Snapshot.Inverted["cat"]["1"])
	assert.Equal(t, 1, res.Snapshot.Inverted["dog"]["2"])
	// Document 3 is all stop-words: absent from the inverted index but
	// present in the positional one.
	assert.NotContains(t, res.Snapshot.Inverted.DocIDs(), "3")
	assert.Equal(t, []int{1}, res.Snapshot.Positional["the"]["3"])
	assert.Equal(t, []int{1, 5}, res.Snapshot.Positional["cats"]["1"])

	loaded, err := snapshot.LoadDir(dataDir)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot.Inverted, loaded.Inverted)
	assert.Equal(t, res.Snapshot.Positional, loaded.Positional)

	_, err = os.Stat(filepath.Join(exportDir, snapshot.LegacyInvertedFile))
	assert.NoError(t, err)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.IndexDocuments))

	require.Len(t, tracker.events, 1)
	ev, ok := tracker.events[0].(analytics.IndexEvent)
	require.True(t, ok)
	assert.Equal(t, 3, ev.Documents)
	assert.Equal(t, analytics.EventIndexBuild, ev.Type)
}

func TestIndexer_RebuildIsIdempotent(t *testing.T) {
	corpusDir := writeCorpus(t)

	first, err := newIndexer(t, corpusDir, t.TempDir()).Run(context.Background())
	require.NoError(t, err)
	second, err := newIndexer(t, corpusDir, t.TempDir()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot.Inverted, second.Snapshot.Inverted)
	assert.Equal(t, first.Snapshot.Positional, second.Snapshot.Positional)
	assert.Equal(t, first.Snapshot.Corpus, second.Snapshot.Corpus)
}

func TestIndexer_StemmedPositionalMode(t *testing.T) {
	corpusDir := writeCorpus(t)
	pipeline, err := analysis.New(config.AnalysisConfig{PositionalMode: config.PositionalStemmed}, nil)
	require.NoError(t, err)
	ix := New(
		corpus.NewReader(config.CorpusConfig{Dir: corpusDir}),
		pipeline,
		snapshot.NewWriter(t.TempDir(), time.Second),
	)

	res, err := ix.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, res.Snapshot.Positional["cat"]["1"])
	assert.NotContains(t, res.Snapshot.Positional, "cats")
}

func TestIndexer_MissingCorpus(t *testing.T) {
	ix := newIndexer(t, filepath.Join(t.TempDir(), "absent"), t.TempDir())
	_, err := ix.Run(context.Background())
	assert.Error(t, err)
}
