package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// buildIndex writes a small corpus and indexes it, returning the data dir.
func buildIndex(t *testing.T) string {
	t.Helper()
	corpusDir := t.TempDir()
	dataDir := t.TempDir()
	docs := map[string]string{
		"1.txt":  "Cats chase dogs. The cats run.",
		"2.txt":  "Dogs sleep all day",
		"10.txt": "Birds and cats",
	}
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(corpusDir, name), []byte(body), 0o644))
	}

	out, err := run(t, "", "index", "--corpus", corpusDir, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 documents")
	return dataDir
}

func TestIndexAndQuery(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "", "query", "--data-dir", dataDir, "--format", "json", "cats", "and", "not", "dogs")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "cats and not dogs", res.Query)
	assert.Equal(t, []string{"10"}, res.Documents)
}

func TestQuery_TextUsesNaturalOrder(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "", "query", "--data-dir", dataDir, "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "2 matches")
	assert.Regexp(t, `(?m)^1\s+10\s*$`, out)
}

func TestQuery_Proximity(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "", "query", "--data-dir", dataDir, "-f", "json", "cats dogs /1")
	require.NoError(t, err)

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "proximity", res.Kind)
	// cats@1 and cats@5 are both two positions from dogs@3.
	assert.Equal(t, []string{"1", "1"}, res.Documents)
}

func TestQuery_MissingIndexReportsDiagnostic(t *testing.T) {
	out, err := run(t, "", "query", "--data-dir", filepath.Join(t.TempDir(), "none"), "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "index not found")
	assert.Contains(t, out, "No matching documents found.")
}

func TestQuery_UnknownFormat(t *testing.T) {
	dataDir := buildIndex(t)
	_, err := run(t, "", "query", "--data-dir", dataDir, "-f", "xml", "cats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestQuery_RequiresArgument(t *testing.T) {
	_, err := run(t, "", "query")
	require.Error(t, err)
}

func TestShell(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "dogs\n\nexit\n", "shell", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 matches")
	assert.Contains(t, out, "query cannot be empty")
	assert.Contains(t, out, "bye")
}

func TestInspect(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "", "inspect", "--data-dir", dataDir, "Cats")
	require.NoError(t, err)

	var entry index.TermEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "cats", entry.Term)
	require.Len(t, entry.Postings, 2)
	assert.Equal(t, "1", entry.Postings[0].DocID)
	assert.Equal(t, []int{1, 5}, entry.Postings[0].Positions)

	_, err = run(t, "", "inspect", "--data-dir", dataDir, "zebra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestStats(t *testing.T) {
	dataDir := buildIndex(t)

	out, err := run(t, "", "stats", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "documents:            3")
	assert.NotContains(t, out, "warning:")
}

func TestIndex_MissingCorpus(t *testing.T) {
	_, err := run(t, "", "index", "--corpus", filepath.Join(t.TempDir(), "nope"), "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
