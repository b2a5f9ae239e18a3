// Package analysis turns raw document text into index terms. It lower-cases
// input, splits on non-alphanumeric boundaries, removes stop-words and stems
// with the Snowball English stemmer. The same StemFunc is handed to the query
// parser so query terms and indexed terms normalize identically.
package analysis

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
)

// StemFunc reduces a lower-cased word to its index term.
type StemFunc func(word string) string

// TokenizeFunc splits a document into an ordered token stream.
type TokenizeFunc func(text string) []string

// SnowballStem is the default StemFunc.
func SnowballStem(word string) string {
	return snowballeng.Stem(word, false)
}

// Pipeline is the preprocessing chain used to build the inverted index.
type Pipeline struct {
	stem           StemFunc
	stopwords      map[string]struct{}
	minTokenLength int
	positionalMode string
	logger         *slog.Logger
}

// New builds a Pipeline from cfg. A configured stop-word file that does not
// exist is not fatal: a warning is logged and no stop-words are removed.
func New(cfg config.AnalysisConfig, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "analysis")

	stopwords := defaultStopwords
	if cfg.StopwordsFile != "" {
		loaded, err := LoadStopwords(cfg.StopwordsFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("stopword file not found, using an empty stopword list",
				"path", cfg.StopwordsFile,
			)
			stopwords = map[string]struct{}{}
		case err != nil:
			return nil, err
		default:
			stopwords = loaded
		}
	}

	minLen := cfg.MinTokenLength
	if minLen < 1 {
		minLen = 1
	}
	mode := cfg.PositionalMode
	if mode == "" {
		mode = config.PositionalRaw
	}

	return &Pipeline{
		stem:           SnowballStem,
		stopwords:      stopwords,
		minTokenLength: minLen,
		positionalMode: mode,
		logger:         logger,
	}, nil
}

// WithStemmer returns a copy of p that stems with fn.
func (p *Pipeline) WithStemmer(fn StemFunc) *Pipeline {
	cp := *p
	cp.stem = fn
	return &cp
}

// Stem returns the pipeline's stemmer so callers can normalize query terms.
func (p *Pipeline) Stem() StemFunc {
	return p.stem
}

// PositionalMode reports whether positional tokens are raw or stemmed.
func (p *Pipeline) PositionalMode() string {
	return p.positionalMode
}

// Preprocess returns the stemmed, stop-word filtered terms of text in order.
func (p *Pipeline) Preprocess(text string) []string {
	if text == "" {
		return []string{}
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := p.stopwords[word]; isStop {
			continue
		}
		if len([]rune(word)) < p.minTokenLength {
			continue
		}
		stemmed := p.stem(word)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// PositionalTokenizer returns the tokenizer used for the positional index.
// In raw mode tokens are only case-folded; in stemmed mode each token also
// goes through the pipeline's stemmer.
func (p *Pipeline) PositionalTokenizer() TokenizeFunc {
	if p.positionalMode != config.PositionalStemmed {
		return PositionalTokens
	}
	stem := p.stem
	return func(text string) []string {
		tokens := PositionalTokens(text)
		for i, tok := range tokens {
			tokens[i] = stem(tok)
		}
		return tokens
	}
}

// LoadStopwords reads a whitespace-separated stop-word list.
func LoadStopwords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stopword file: %w", err)
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		words[strings.ToLower(scanner.Text())] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stopword file: %w", err)
	}
	return words, nil
}
