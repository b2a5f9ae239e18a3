// Package corpus reads a directory of plain-text documents. Each file becomes
// one document whose ID is the file name without its extension.
package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
)

// Document is one file's trimmed text.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Skipped records a file that could not be read.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of reading a corpus. Documents are sorted by ID.
type Result struct {
	Documents []Document
	Skipped   []Skipped
}

type Reader struct {
	dir         string
	extensions  map[string]struct{}
	concurrency int
	logger      *slog.Logger
}

func NewReader(cfg config.CorpusConfig) *Reader {
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	if len(exts) == 0 {
		exts[".txt"] = struct{}{}
	}
	concurrency := cfg.ReadConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Reader{
		dir:         cfg.Dir,
		extensions:  exts,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "corpus"),
	}
}

// Read walks the corpus directory and loads every matching file. Files that
// cannot be read are reported in Result.Skipped and do not fail the read.
func (r *Reader) Read(ctx context.Context) (*Result, error) {
	info, err := os.Stat(r.dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("corpus directory %q not found: %w", r.dir, apperrors.ErrInvalidInput)
	}

	var paths []string
	err = filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := r.extensions[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus directory: %w", err)
	}

	docs := make([]*Document, len(paths))
	skips := make([]*Skipped, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := r.readFile(path)
			if err != nil {
				r.logger.Warn("skipping document", "path", path, "error", err)
				skips[i] = &Skipped{Path: path, Reason: err.Error()}
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	result := &Result{
		Documents: make([]Document, 0, len(paths)),
		Skipped:   make([]Skipped, 0),
	}
	byID := make(map[string]int, len(paths))
	for i := range paths {
		if skips[i] != nil {
			result.Skipped = append(result.Skipped, *skips[i])
			continue
		}
		doc := docs[i]
		if prev, dup := byID[doc.ID]; dup {
			r.logger.Warn("duplicate document id, later file wins",
				"doc_id", doc.ID,
				"kept", doc.Path,
				"dropped", result.Documents[prev].Path,
			)
			result.Documents[prev] = *doc
			continue
		}
		byID[doc.ID] = len(result.Documents)
		result.Documents = append(result.Documents, *doc)
	}
	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].ID < result.Documents[j].ID
	})

	r.logger.Info("corpus read",
		"dir", r.dir,
		"documents", len(result.Documents),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (r *Reader) readFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	text, err := r.decode(path, data)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	return &Document{
		ID:      strings.TrimSuffix(name, filepath.Ext(name)),
		Path:    path,
		Content: strings.TrimSpace(text),
	}, nil
}

// decode returns data as UTF-8, reinterpreting it as ISO-8859-1 when it is
// not valid UTF-8.
func (r *Reader) decode(path string, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	r.logger.Warn("document is not valid UTF-8, decoding as ISO-8859-1", "path", path)
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrDocumentDecode, err)
	}
	return string(out), nil
}
