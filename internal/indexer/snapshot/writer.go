package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
)

const lockRetryDelay = 50 * time.Millisecond

// Set is everything one rebuild produces.
type Set struct {
	Inverted   index.InvertedIndex
	Positional index.PositionalIndex
	Corpus     map[string][]string
}

// Writer writes snapshot files into a data directory. Only one Writer,
// across processes, may write at a time.
type Writer struct {
	dataDir     string
	lockTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewWriter creates a Writer for dataDir. lockTimeout bounds how long a
// write waits for another writer to finish; zero means try once.
func NewWriter(dataDir string, lockTimeout time.Duration) *Writer {
	return &Writer{
		dataDir:     dataDir,
		lockTimeout: lockTimeout,
		logger:      slog.Default().With("component", "snapshot-writer"),
		now:         time.Now,
	}
}

// WriteAll writes all three snapshots under a single lock acquisition.
func (w *Writer) WriteAll(ctx context.Context, set Set) error {
	return w.withLock(ctx, func() error {
		if err := w.writeInverted(set.Inverted); err != nil {
			return err
		}
		if err := w.writePositional(set.Positional); err != nil {
			return err
		}
		return w.writeCorpus(set.Corpus)
	})
}

func (w *Writer) WriteInverted(ctx context.Context, inv index.InvertedIndex) error {
	return w.withLock(ctx, func() error { return w.writeInverted(inv) })
}

func (w *Writer) WritePositional(ctx context.Context, pos index.PositionalIndex) error {
	return w.withLock(ctx, func() error { return w.writePositional(pos) })
}

func (w *Writer) WriteCorpus(ctx context.Context, corpus map[string][]string) error {
	return w.withLock(ctx, func() error { return w.writeCorpus(corpus) })
}

func (w *Writer) writeInverted(inv index.InvertedIndex) error {
	if inv == nil {
		inv = index.InvertedIndex{}
	}
	return w.write(InvertedFile, KindInverted, len(inv), len(inv.DocIDs()), inv)
}

func (w *Writer) writePositional(pos index.PositionalIndex) error {
	if pos == nil {
		pos = index.PositionalIndex{}
	}
	return w.write(PositionalFile, KindPositional, len(pos), len(pos.DocIDs()), pos)
}

func (w *Writer) writeCorpus(corpus map[string][]string) error {
	if corpus == nil {
		corpus = map[string][]string{}
	}
	terms := make(map[string]struct{})
	for _, toks := range corpus {
		for _, t := range toks {
			terms[t] = struct{}{}
		}
	}
	return w.write(CorpusFile, KindCorpus, len(terms), len(corpus), corpus)
}

func (w *Writer) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	lock := flock.New(filepath.Join(w.dataDir, lockFile))

	lockCtx := ctx
	if w.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, w.lockTimeout)
		defer cancel()
	}

	var (
		locked bool
		err    error
	)
	if w.lockTimeout > 0 {
		locked, err = lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		locked, err = lock.TryLock()
	}
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("acquiring index lock: %w", ctx.Err())
	}
	if err != nil || !locked {
		return fmt.Errorf("acquiring index lock %s: %w", lock.Path(), apperrors.ErrLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Error("releasing index lock", "error", err)
		}
	}()
	return fn()
}

// write atomically replaces name with a new snapshot: the file is built under
// a .tmp name, synced, and renamed into place. On failure the .tmp file is
// removed and any existing snapshot is left untouched.
func (w *Writer) write(name string, kind Kind, termCount, docCount int, v any) (err error) {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s snapshot: %w", kind, err)
	}

	finalPath := filepath.Join(w.dataDir, name)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			f.Close()
		}
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			w.logger.Warn("removing temp snapshot file", "path", tmpPath, "error", rmErr)
		}
	}()

	header := Header{
		Magic:      MagicBytes,
		Version:    FormatVersion,
		Kind:       kind,
		TermCount:  uint32(termCount),
		DocCount:   uint32(docCount),
		CreatedAt:  w.now().Unix(),
		BodyOffset: int64(HeaderSize),
		BodySize:   int64(len(body)),
	}
	if _, err := f.Write(encodeHeader(header)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("writing %s body: %w", kind, err)
	}
	checksum := crc32.ChecksumIEEE(body)
	if _, err := f.Write(encodeFooter(checksum, uint32(docCount), int64(len(body)))); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing snapshot file: %w", err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("renaming snapshot file: %w", err)
	}

	w.logger.Info("snapshot written",
		"file", name,
		"kind", kind.String(),
		"terms", termCount,
		"docs", docCount,
		"bytes", len(body)+HeaderSize+FooterSize,
	)
	return nil
}
