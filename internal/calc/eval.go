package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/edwingeng/deque"

	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
)

// Evaluator computes cell values over one immutable grid. It is not safe for
// concurrent use; create one per goroutine.
type Evaluator struct {
	grid *grid.Grid
	memo map[[2]int]outcome

	// reference recursion depth and its bound (number of non-blank cells);
	// only non-blank cells resolve further, so a longer chain revisits one
	depth int
	limit int
}

type outcome struct {
	value float64
	err   error
}

type Option func(e *Evaluator)

// WithMemo caches every evaluated cell for the lifetime of the Evaluator.
func WithMemo() Option {
	return func(e *Evaluator) {
		e.memo = map[[2]int]outcome{}
	}
}

func NewEvaluator(g *grid.Grid, opts ...Option) *Evaluator {
	e := &Evaluator{
		grid:  g,
		limit: g.Filled(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the cell at (row, col) of g.
func Evaluate(g *grid.Grid, row, col int) (float64, error) {
	return NewEvaluator(g).Evaluate(row, col)
}

// Tokenize splits cell content on runs of whitespace.
func Tokenize(content string) []string {
	return strings.Fields(content)
}

// Evaluate computes the value of the cell at (row, col). Empty cells are 0.
func (e *Evaluator) Evaluate(row, col int) (float64, error) {
	cell, ok := e.grid.At(row, col)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, grid.CellName(row, col))
	}

	key := [2]int{row, col}
	if e.memo != nil {
		if o, ok := e.memo[key]; ok {
			return o.value, o.err
		}
	}
	val, err := e.evalCell(cell)
	if e.memo != nil {
		e.memo[key] = outcome{value: val, err: err}
	}
	return val, err
}

func (e *Evaluator) evalCell(cell grid.Cell) (float64, error) {
	tokens := Tokenize(cell.Text)
	if len(tokens) == 0 {
		return 0, nil
	}

	stack := deque.NewDeque()
	for _, token := range tokens {
		switch {
		case IsOperator(token):
			if stack.Len() < 2 {
				return 0, fmt.Errorf("%w: %q in %s", ErrInsufficientOperands, token, cell.Name())
			}
			right := stack.PopBack().(float64)
			left := stack.PopBack().(float64)
			val, err := Apply(left, right, token)
			if err != nil {
				return 0, err
			}
			stack.PushBack(val)
		case IsReference(token):
			ref, err := Parse(cell.Row, cell.Col, token)
			if err != nil {
				return 0, err
			}
			val, err := e.Resolve(ref)
			if err != nil {
				return 0, err
			}
			stack.PushBack(val)
		default:
			val, err := strconv.ParseFloat(token, 64)
			if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
				return 0, fmt.Errorf("%w: %q in %s", ErrUnrecognizedToken, token, cell.Name())
			}
			stack.PushBack(val)
		}
	}

	if stack.Len() != 1 {
		return 0, fmt.Errorf("%w: %d values left in %s", ErrMalformedExpression, stack.Len(), cell.Name())
	}
	val := stack.PopBack().(float64)
	// division by zero and overflow surface here
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("%w: %s", ErrNonFinite, cell.Name())
	}
	return val, nil
}
