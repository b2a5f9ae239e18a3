package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
)

// LoadInverted reads an inverted index snapshot or a plain JSON
// inverted_index.json file.
func LoadInverted(path string) (index.InvertedIndex, Info, error) {
	inv, info, err := load[index.InvertedIndex](path, KindInverted)
	if err != nil {
		return nil, info, err
	}
	if inv == nil {
		inv = index.InvertedIndex{}
	}
	if info.Legacy {
		if n := pruneInverted(inv); n > 0 {
			legacyLog().Warn("dropped postings with non-positive counts", "path", path, "postings", n)
		}
		info.TermCount, info.DocCount = len(inv), len(inv.DocIDs())
	}
	return inv, info, nil
}

// LoadPositional reads a positional index snapshot or a plain JSON
// positional_index.json file.
func LoadPositional(path string) (index.PositionalIndex, Info, error) {
	pos, info, err := load[index.PositionalIndex](path, KindPositional)
	if err != nil {
		return nil, info, err
	}
	if pos == nil {
		pos = index.PositionalIndex{}
	}
	if info.Legacy {
		if n := prunePositional(pos); n > 0 {
			legacyLog().Warn("dropped postings without valid positions", "path", path, "postings", n)
		}
		info.TermCount, info.DocCount = len(pos), len(pos.DocIDs())
	}
	return pos, info, nil
}

func legacyLog() *slog.Logger {
	return slog.Default().With("component", "snapshot-reader")
}

// Plain JSON files may come from other tools, so entries that break the
// index invariants are removed on load.

// pruneInverted removes pairs whose count is below one and terms left with
// no documents. It returns the number of pairs removed.
func pruneInverted(inv index.InvertedIndex) int {
	dropped := 0
	for term, docs := range inv {
		for doc, n := range docs {
			if n < 1 {
				delete(docs, doc)
				dropped++
			}
		}
		if len(docs) == 0 {
			delete(inv, term)
		}
	}
	return dropped
}

// prunePositional keeps only positive positions, sorted and deduplicated,
// and removes pairs left empty. It returns the number of pairs removed.
func prunePositional(pos index.PositionalIndex) int {
	dropped := 0
	for term, docs := range pos {
		for doc, ps := range docs {
			clean := ps[:0]
			for _, p := range ps {
				if p >= 1 {
					clean = append(clean, p)
				}
			}
			slices.Sort(clean)
			clean = slices.Compact(clean)
			if len(clean) == 0 {
				delete(docs, doc)
				dropped++
				continue
			}
			docs[doc] = clean
		}
		if len(docs) == 0 {
			delete(pos, term)
		}
	}
	return dropped
}

// LoadCorpus reads the tokenized corpus (DocID -> terms).
func LoadCorpus(path string) (map[string][]string, Info, error) {
	corpus, info, err := load[map[string][]string](path, KindCorpus)
	if err != nil {
		return nil, info, err
	}
	if corpus == nil {
		corpus = map[string][]string{}
	}
	if info.Legacy {
		info.DocCount = len(corpus)
	}
	return corpus, info, nil
}

// Loaded is the pair of indexes the query engine needs. Missing lists the
// files that were absent and were replaced by an empty index.
type Loaded struct {
	Inverted       index.InvertedIndex
	Positional     index.PositionalIndex
	InvertedInfo   Info
	PositionalInfo Info
	Missing        []string
}

// Generation derives a stable identifier from both files' checksums.
func (l *Loaded) Generation() string {
	return fmt.Sprintf("%08x%08x", l.InvertedInfo.Checksum, l.PositionalInfo.Checksum)
}

// LoadDir loads both indexes from dataDir, preferring snapshot files and
// falling back to the plain JSON names. Each index is loaded on its own: an
// absent file yields an empty index and is listed in Loaded.Missing. Only
// when neither index exists does LoadDir return ErrMissingIndex.
func LoadDir(dataDir string) (*Loaded, error) {
	l := &Loaded{
		Inverted:   index.InvertedIndex{},
		Positional: index.PositionalIndex{},
	}

	invPath, err := resolve(dataDir, InvertedFile, LegacyInvertedFile)
	switch {
	case errors.Is(err, apperrors.ErrMissingIndex):
		l.Missing = append(l.Missing, InvertedFile)
	case err != nil:
		return nil, err
	default:
		if l.Inverted, l.InvertedInfo, err = LoadInverted(invPath); err != nil {
			return nil, err
		}
	}

	posPath, err := resolve(dataDir, PositionalFile, LegacyPositionalFile)
	switch {
	case errors.Is(err, apperrors.ErrMissingIndex):
		l.Missing = append(l.Missing, PositionalFile)
	case err != nil:
		return nil, err
	default:
		if l.Positional, l.PositionalInfo, err = LoadPositional(posPath); err != nil {
			return nil, err
		}
	}

	if len(l.Missing) == 2 {
		return nil, fmt.Errorf("no index files in %s: %w", dataDir, apperrors.ErrMissingIndex)
	}
	return l, nil
}

func resolve(dataDir string, names ...string) (string, error) {
	for _, name := range names {
		p := filepath.Join(dataDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", names[0], dataDir, apperrors.ErrMissingIndex)
}

func load[T any](path string, kind Kind) (T, Info, error) {
	var zero T
	info := Info{Path: path, Kind: kind}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, info, fmt.Errorf("loading %s: %w", path, apperrors.ErrMissingIndex)
		}
		return zero, info, fmt.Errorf("reading snapshot file: %w", err)
	}

	if !hasMagic(data) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return zero, info, fmt.Errorf("%s is neither a snapshot nor JSON: %v: %w",
				path, err, apperrors.ErrCorruptSnapshot)
		}
		info.Legacy = true
		info.Checksum = crc32.ChecksumIEEE(data)
		return v, info, nil
	}

	body, header, checksum, err := verify(data)
	if err != nil {
		return zero, info, fmt.Errorf("%s: %w", path, err)
	}
	if header.Kind != kind {
		return zero, info, fmt.Errorf("%s holds a %s snapshot, want %s: %w",
			path, header.Kind, kind, apperrors.ErrCorruptSnapshot)
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return zero, info, fmt.Errorf("parsing %s body: %v: %w", kind, err, apperrors.ErrCorruptSnapshot)
	}
	info.Version = header.Version
	info.TermCount = int(header.TermCount)
	info.DocCount = int(header.DocCount)
	info.CreatedAt = time.Unix(header.CreatedAt, 0)
	info.Checksum = checksum
	return v, info, nil
}

func verify(data []byte) ([]byte, Header, uint32, error) {
	if len(data) < HeaderSize+FooterSize {
		return nil, Header{}, 0, fmt.Errorf("truncated snapshot (%d bytes): %w", len(data), apperrors.ErrCorruptSnapshot)
	}
	header := decodeHeader(data[:HeaderSize])
	if header.Version != FormatVersion {
		return nil, header, 0, fmt.Errorf("unsupported snapshot version %d: %w", header.Version, apperrors.ErrCorruptSnapshot)
	}
	end := header.BodyOffset + header.BodySize
	if header.BodyOffset != int64(HeaderSize) || end+int64(FooterSize) != int64(len(data)) {
		return nil, header, 0, fmt.Errorf("body extent %d+%d does not match file size %d: %w",
			header.BodyOffset, header.BodySize, len(data), apperrors.ErrCorruptSnapshot)
	}
	body := data[header.BodyOffset:end]
	footer := data[end:]
	want := binary.LittleEndian.Uint32(footer[0:4])
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, header, 0, fmt.Errorf("checksum mismatch: got %08x, want %08x: %w", got, want, apperrors.ErrCorruptSnapshot)
	}
	return body, header, want, nil
}
