// Package snapshot persists the inverted index, the positional index and the
// tokenized corpus as checksummed files. Each file is a fixed 64-byte header,
// a JSON body and a 16-byte footer carrying the body's CRC32.
package snapshot

import (
	"encoding/binary"
	"time"
)

const (
	MagicBytes    uint32 = 0x42524958 // "BRIX"
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 16
)

// Kind identifies which structure a snapshot file holds.
type Kind uint32

const (
	KindInverted   Kind = 1
	KindPositional Kind = 2
	KindCorpus     Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindInverted:
		return "inverted"
	case KindPositional:
		return "positional"
	case KindCorpus:
		return "corpus"
	default:
		return "unknown"
	}
}

// File names inside the data directory.
const (
	InvertedFile   = "inverted.brix"
	PositionalFile = "positional.brix"
	CorpusFile     = "corpus.brix"

	LegacyInvertedFile   = "inverted_index.json"
	LegacyPositionalFile = "positional_index.json"

	lockFile = ".index.lock"
)

// Header is the decoded 64-byte file header.
type Header struct {
	Magic      uint32
	Version    uint32
	Kind       Kind
	TermCount  uint32
	DocCount   uint32
	CreatedAt  int64
	BodyOffset int64
	BodySize   int64
}

// Info describes a loaded snapshot file. Legacy is set for plain JSON files,
// which carry no header; their Checksum is computed over the whole file.
type Info struct {
	Path      string
	Kind      Kind
	Version   uint32
	TermCount int
	DocCount  int
	CreatedAt time.Time
	Checksum  uint32
	Legacy    bool
}

func encodeHeader(h Header) []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.Kind))
	binary.LittleEndian.PutUint32(b[12:16], h.TermCount)
	binary.LittleEndian.PutUint32(b[16:20], h.DocCount)
	binary.LittleEndian.PutUint64(b[24:32], uint64(h.CreatedAt))
	binary.LittleEndian.PutUint64(b[32:40], uint64(h.BodyOffset))
	binary.LittleEndian.PutUint64(b[40:48], uint64(h.BodySize))
	return b
}

func decodeHeader(b []byte) Header {
	return Header{
		Magic:      binary.LittleEndian.Uint32(b[0:4]),
		Version:    binary.LittleEndian.Uint32(b[4:8]),
		Kind:       Kind(binary.LittleEndian.Uint32(b[8:12])),
		TermCount:  binary.LittleEndian.Uint32(b[12:16]),
		DocCount:   binary.LittleEndian.Uint32(b[16:20]),
		CreatedAt:  int64(binary.LittleEndian.Uint64(b[24:32])),
		BodyOffset: int64(binary.LittleEndian.Uint64(b[32:40])),
		BodySize:   int64(binary.LittleEndian.Uint64(b[40:48])),
	}
}

func encodeFooter(checksum, docCount uint32, bodySize int64) []byte {
	b := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(b[0:4], checksum)
	binary.LittleEndian.PutUint32(b[4:8], docCount)
	binary.LittleEndian.PutUint64(b[8:16], uint64(bodySize))
	return b
}

func hasMagic(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == MagicBytes
}
