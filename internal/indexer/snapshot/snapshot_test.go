package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
)

func sampleSet() Set {
	inv := index.InvertedIndex{}
	inv.Add("cat", "doc1")
	inv.Add("cat", "doc1")
	inv.Add("dog", "doc2")

	pos := index.PositionalIndex{}
	pos.Append("cats", "doc1", 1)
	pos.Append("cats", "doc1", 3)
	pos.Append("dogs", "doc2", 2)

	return Set{
		Inverted:   inv,
		Positional: pos,
		Corpus: map[string][]string{
			"doc1": {"cat", "cat"},
			"doc2": {"dog"},
		},
	}
}

func TestWriteAll_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, time.Second)
	set := sampleSet()
	require.NoError(t, w.WriteAll(context.Background(), set))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, set.Inverted, loaded.Inverted)
	assert.Equal(t, set.Positional, loaded.Positional)
	assert.Equal(t, 2, loaded.InvertedInfo.TermCount)
	assert.Equal(t, 2, loaded.InvertedInfo.DocCount)
	assert.False(t, loaded.InvertedInfo.Legacy)

	corpus, info, err := LoadCorpus(filepath.Join(dir, CorpusFile))
	require.NoError(t, err)
	assert.Equal(t, set.Corpus, corpus)
	assert.Equal(t, KindCorpus, info.Kind)

	_, err = os.Stat(filepath.Join(dir, InvertedFile+".tmp"))
	assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestWrite_IdempotentRebuild(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	fixed := func() time.Time { return time.Unix(1700000000, 0) }

	for _, dir := range []string{dir1, dir2} {
		w := NewWriter(dir, time.Second)
		w.now = fixed
		require.NoError(t, w.WriteAll(context.Background(), sampleSet()))
	}
	for _, name := range []string{InvertedFile, PositionalFile, CorpusFile} {
		a, err := os.ReadFile(filepath.Join(dir1, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dir2, name))
		require.NoError(t, err)
		assert.Equal(t, a, b, name)
	}

	l1, err := LoadDir(dir1)
	require.NoError(t, err)
	l2, err := LoadDir(dir2)
	require.NoError(t, err)
	assert.Equal(t, l1.Generation(), l2.Generation())
}

func TestLoad_Missing(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.ErrorIs(t, err, apperrors.ErrMissingIndex)

	_, _, err = LoadInverted(filepath.Join(t.TempDir(), InvertedFile))
	assert.ErrorIs(t, err, apperrors.ErrMissingIndex)
}

func TestLoadDir_OnlyInvertedPresent(t *testing.T) {
	dir := t.TempDir()
	set := sampleSet()
	require.NoError(t, ExportJSON(filepath.Join(dir, LegacyInvertedFile), set.Inverted))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, set.Inverted, loaded.Inverted)
	assert.NotNil(t, loaded.Positional)
	assert.Empty(t, loaded.Positional)
	assert.Equal(t, []string{PositionalFile}, loaded.Missing)
}

func TestLoadDir_OnlyPositionalPresent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir, time.Second).WritePositional(context.Background(), sampleSet().Positional))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, loaded.Inverted)
	assert.Len(t, loaded.Positional, 2)
	assert.Equal(t, []string{InvertedFile}, loaded.Missing)
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir, time.Second).WriteInverted(context.Background(), sampleSet().Inverted))

	path := filepath.Join(dir, InvertedFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[HeaderSize+2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, _, err = LoadInverted(path)
	assert.ErrorIs(t, err, apperrors.ErrCorruptSnapshot)
}

func TestLoad_KindMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir, time.Second).WriteInverted(context.Background(), sampleSet().Inverted))

	_, _, err := LoadPositional(filepath.Join(dir, InvertedFile))
	assert.ErrorIs(t, err, apperrors.ErrCorruptSnapshot)
}

func TestLoad_Truncated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewWriter(dir, time.Second).WriteInverted(context.Background(), sampleSet().Inverted))
	path := filepath.Join(dir, InvertedFile)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-5], 0644))

	_, _, err = LoadInverted(path)
	assert.ErrorIs(t, err, apperrors.ErrCorruptSnapshot)
}

func TestLoadDir_LegacyJSON(t *testing.T) {
	dir := t.TempDir()
	set := sampleSet()
	require.NoError(t, ExportJSON(filepath.Join(dir, LegacyInvertedFile), set.Inverted))
	require.NoError(t, ExportJSON(filepath.Join(dir, LegacyPositionalFile), set.Positional))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, set.Inverted, loaded.Inverted)
	assert.Equal(t, set.Positional, loaded.Positional)
	assert.True(t, loaded.InvertedInfo.Legacy)
	assert.Equal(t, 2, loaded.PositionalInfo.TermCount)
}

func TestLoadDir_LegacyJSONDropsInvalidPostings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyInvertedFile),
		[]byte(`{"ghost":{"d1":0},"cat":{"d1":2,"d2":-1}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyPositionalFile),
		[]byte(`{"ghost":{"d1":[]},"cat":{"d1":[4,0,2,2]}}`), 0644))

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, index.InvertedIndex{"cat": {"d1": 2}}, loaded.Inverted)
	assert.Equal(t, index.PositionalIndex{"cat": {"d1": {2, 4}}}, loaded.Positional)
	assert.Equal(t, 1, loaded.InvertedInfo.TermCount)
	assert.Equal(t, 1, loaded.InvertedInfo.DocCount)
}

func TestWrite_FailedRenameRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, InvertedFile)
	require.NoError(t, os.MkdirAll(filepath.Join(blocker, "occupied"), 0755))

	err := NewWriter(dir, time.Second).WriteInverted(context.Background(), sampleSet().Inverted)
	require.Error(t, err)

	_, statErr := os.Stat(blocker + ".tmp")
	assert.True(t, os.IsNotExist(statErr), "temp file left behind: %v", statErr)
	info, statErr := os.Stat(blocker)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestLoad_GarbageIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), LegacyInvertedFile)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, _, err := LoadInverted(path)
	assert.ErrorIs(t, err, apperrors.ErrCorruptSnapshot)
}

func TestWriter_LockHeldElsewhere(t *testing.T) {
	dir := t.TempDir()
	other := flock.New(filepath.Join(dir, lockFile))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	w := NewWriter(dir, 100*time.Millisecond)
	err = w.WriteInverted(context.Background(), sampleSet().Inverted)
	assert.ErrorIs(t, err, apperrors.ErrLocked)
}

func TestExportJSON_Indented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", LegacyInvertedFile)
	require.NoError(t, ExportJSON(path, map[string]map[string]int{"cat": {"doc1": 2}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"cat\": {\n        \"doc1\": 2\n    }\n}", string(data))
}
