// Package shell is the interactive query loop: read a query, run it, and
// print the matching documents until the user types exit.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
)

const (
	prompt      = "query> "
	docsPerRow  = 5
	exitCommand = "exit"
)

type Searcher interface {
	Search(ctx context.Context, raw string) *engine.Result
}

type Shell struct {
	searcher    Searcher
	in          io.Reader
	out         io.Writer
	interactive bool
	styles      Styles
}

type Option func(*Shell)

// WithInteractive forces the prompt and styling on or off.
func WithInteractive(on bool) Option {
	return func(s *Shell) {
		s.interactive = on
		if on {
			s.styles = DefaultStyles()
		} else {
			s.styles = PlainStyles()
		}
	}
}

// New builds a shell. The prompt and colours are enabled when out is a
// terminal and NO_COLOR is unset.
func New(searcher Searcher, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{searcher: searcher, in: in, out: out}
	WithInteractive(IsTerminal(out) && !noColor())(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func noColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Run reads queries line by line until exit, end of input, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	for {
		if s.interactive {
			fmt.Fprint(s.out, s.styles.Prompt.Render(prompt))
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.EqualFold(line, exitCommand):
			fmt.Fprintln(s.out, s.styles.Dim.Render("bye"))
			return nil
		case line == "":
			fmt.Fprintln(s.out, s.styles.Warning.Render("query cannot be empty"))
		default:
			s.Render(s.searcher.Search(ctx, line))
		}
	}
}

// Render prints res: diagnostics first, then documents in natural order.
func (s *Shell) Render(res *engine.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintln(s.out, s.styles.Warning.Render("! "+d))
	}
	if len(res.Documents) == 0 {
		fmt.Fprintln(s.out, s.styles.Error.Render("No matching documents found."))
		return
	}

	docs := append([]string(nil), res.Documents...)
	NaturalSort(docs)

	header := fmt.Sprintf("%d %s (%s, %dms)", len(docs), plural(len(docs), "match", "matches"), res.Kind, res.LatencyMs)
	fmt.Fprintln(s.out, s.styles.Header.Render(header))
	for start := 0; start < len(docs); start += docsPerRow {
		end := min(start+docsPerRow, len(docs))
		cards := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			cards = append(cards, s.styles.Card.Render(d))
		}
		fmt.Fprintln(s.out, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// NaturalSort orders IDs by the number formed from their digits, so "2"
// comes before "10". IDs with digits sort before IDs without; ties fall back
// to plain string order. Duplicates are kept.
func NaturalSort(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return naturalLess(ids[i], ids[j])
	})
}

func naturalLess(a, b string) bool {
	da, db := digits(a), digits(b)
	switch {
	case da != "" && db != "":
		if c := compareNumeric(da, db); c != 0 {
			return c < 0
		}
	case da != "":
		return true
	case db != "":
		return false
	}
	return a < b
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// compareNumeric compares decimal digit strings of any length.
func compareNumeric(a, b string) int {
	if x, errA := strconv.ParseUint(a, 10, 64); errA == nil {
		if y, errB := strconv.ParseUint(b, 10, 64); errB == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
