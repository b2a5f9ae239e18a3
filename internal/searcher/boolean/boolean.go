// Package boolean evaluates AND/OR/NOT token streams against a Store with
// NOT > AND > OR precedence.
package boolean

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/parser"
)

type evaluator struct {
	store     *index.Store
	operands  []*roaring.Bitmap
	operators []parser.Op
}

// Evaluate scans tokens left to right with an operand stack and an operator
// stack. An operator that lacks operands when applied is dropped, so
// malformed input never fails. The result is sorted and never nil.
func Evaluate(tokens []parser.Token, store *index.Store) []string {
	e := &evaluator{store: store}
	for _, tok := range tokens {
		switch tok.Op {
		case parser.OpNot:
			e.operators = append(e.operators, parser.OpNot)
		case parser.OpAnd:
			e.drainWhile(func(op parser.Op) bool { return op == parser.OpAnd })
			e.operators = append(e.operators, parser.OpAnd)
		case parser.OpOr:
			e.drainWhile(func(op parser.Op) bool { return op == parser.OpAnd || op == parser.OpOr })
			e.operators = append(e.operators, parser.OpOr)
		default:
			e.operands = append(e.operands, store.DocumentsContaining(tok.Term))
		}
	}
	for len(e.operators) > 0 {
		e.apply()
	}
	if len(e.operands) == 0 {
		return []string{}
	}
	// Operands left over from input with missing operators are ignored; the
	// bottom of the stack is the answer.
	return store.DocIDs(e.operands[0])
}

func (e *evaluator) drainWhile(match func(parser.Op) bool) {
	for len(e.operators) > 0 && match(e.operators[len(e.operators)-1]) {
		e.apply()
	}
}

// apply pops one operator and applies it. Stored bitmaps are shared, so every
// result is a fresh bitmap.
func (e *evaluator) apply() {
	op := e.operators[len(e.operators)-1]
	e.operators = e.operators[:len(e.operators)-1]

	switch op {
	case parser.OpNot:
		operand, ok := e.pop()
		if !ok {
			return
		}
		e.push(roaring.AndNot(e.store.Universe(), operand))
	case parser.OpAnd, parser.OpOr:
		if len(e.operands) < 2 {
			return
		}
		right, _ := e.pop()
		left, _ := e.pop()
		if op == parser.OpAnd {
			e.push(roaring.And(left, right))
		} else {
			e.push(roaring.Or(left, right))
		}
	}
}

func (e *evaluator) push(bm *roaring.Bitmap) {
	e.operands = append(e.operands, bm)
}

func (e *evaluator) pop() (*roaring.Bitmap, bool) {
	if len(e.operands) == 0 {
		return nil, false
	}
	bm := e.operands[len(e.operands)-1]
	e.operands = e.operands[:len(e.operands)-1]
	return bm, true
}
