// Package parser turns a raw query string into either a boolean token stream
// or a two-term proximity query.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
)

type Kind int

const (
	KindBoolean Kind = iota
	KindProximity
)

func (k Kind) String() string {
	if k == KindProximity {
		return "proximity"
	}
	return "boolean"
}

type Op int

const (
	OpNone Op = iota
	OpAnd
	OpOr
	OpNot
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpNot:
		return "NOT"
	default:
		return ""
	}
}

// Token is an operator or a term; Op is OpNone for terms.
type Token struct {
	Op   Op
	Term string
}

func (t Token) IsOperator() bool { return t.Op != OpNone }

func (t Token) String() string {
	if t.IsOperator() {
		return t.Op.String()
	}
	return t.Term
}

// Proximity asks for Term1 and Term2 within MaxDistance words.
type Proximity struct {
	Term1       string
	Term2       string
	MaxDistance int
}

type Query struct {
	Kind      Kind
	Tokens    []Token
	Proximity Proximity
}

// Terms lists the non-operator terms of q in query order.
func (q Query) Terms() []string {
	if q.Kind == KindProximity {
		return []string{q.Proximity.Term1, q.Proximity.Term2}
	}
	terms := make([]string, 0, len(q.Tokens))
	for _, t := range q.Tokens {
		if !t.IsOperator() {
			terms = append(terms, t.Term)
		}
	}
	return terms
}

// Canonical renders q in a form that is equal for two raw strings exactly
// when they parse to the same query.
func (q Query) Canonical() string {
	if q.Kind == KindProximity {
		return fmt.Sprintf("proximity:%s %s /%d", q.Proximity.Term1, q.Proximity.Term2, q.Proximity.MaxDistance)
	}
	parts := make([]string, len(q.Tokens))
	for i, t := range q.Tokens {
		parts[i] = t.String()
	}
	return "boolean:" + strings.Join(parts, " ")
}

// Words are runs of Unicode letters, marks, digits and underscores, the same
// class the positional index is built from. The distance stays ASCII digits
// so it always parses as a decimal number.
var proximityShape = regexp.MustCompile(`([\p{L}\p{M}\p{N}_]+)\s+([\p{L}\p{M}\p{N}_]+)\s*/\s*(\d+)`)

var operators = map[string]Op{
	"and": OpAnd,
	"or":  OpOr,
	"not": OpNot,
}

// Parse lowercases raw and looks for "word1 word2 /n" anywhere in it. When
// found the query is a proximity query over the two words as written.
// Otherwise every whitespace-separated word is an operator keyword or a term
// passed through stem, which must be the stemmer used to build the inverted
// index. A nil stem leaves terms unchanged.
func Parse(raw string, stem analysis.StemFunc) Query {
	q := strings.ToLower(strings.TrimSpace(raw))

	if m := proximityShape.FindStringSubmatch(q); m != nil {
		return Query{
			Kind: KindProximity,
			Proximity: Proximity{
				Term1:       m[1],
				Term2:       m[2],
				MaxDistance: parseDistance(m[3]),
			},
		}
	}

	words := strings.Fields(q)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		if op, ok := operators[w]; ok {
			tokens = append(tokens, Token{Op: op})
			continue
		}
		if stem != nil {
			w = stem(w)
		}
		tokens = append(tokens, Token{Term: w})
	}
	return Query{Kind: KindBoolean, Tokens: tokens}
}

// parseDistance clamps distances too large for an int.
func parseDistance(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.MaxInt
	}
	return n
}
