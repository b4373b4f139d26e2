package calc

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
)

// Reference points from the owner cell to a target cell. Row is -1 when the
// token's digits could not be parsed, which is always out of range.
type Reference struct {
	OwnerRow int
	OwnerCol int
	Row      int
	Col      int
}

// String is the target cell name, e.g. "B2".
func (r Reference) String() string {
	return grid.CellName(r.Row, r.Col)
}

func (r Reference) isSelf() bool {
	return r.Row == r.OwnerRow && r.Col == r.OwnerCol
}

// IsReference reports whether token starts with an ASCII letter. The rest of
// the token is not checked.
func IsReference(token string) bool {
	return token != "" && isLetter(token[0])
}

// Parse builds a reference from a token like "a3" or "C12" found in the cell
// at (ownerRow, ownerCol).
func Parse(ownerRow, ownerCol int, token string) (Reference, error) {
	if !IsReference(token) {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, token)
	}
	col := int(toUpper(token[0]) - 'A')
	row, err := strconv.Atoi(token[1:])
	if err != nil || !isDigits(token[1:]) {
		row = -1
	} else {
		row--
	}
	return Reference{OwnerRow: ownerRow, OwnerCol: ownerCol, Row: row, Col: col}, nil
}

// Resolve evaluates the cell ref points to.
func Resolve(ref Reference, g *grid.Grid) (float64, error) {
	return NewEvaluator(g).Resolve(ref)
}

// Resolve looks up and evaluates the target of ref. Only direct cycles are
// detected: a cell pointing at itself, or at a cell that points straight back.
func (e *Evaluator) Resolve(ref Reference) (float64, error) {
	target, ok := e.grid.At(ref.Row, ref.Col)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, ref)
	}
	if ref.isSelf() {
		return 0, fmt.Errorf("%w: %s", ErrSelfReference, ref)
	}
	if refersTo(target, ref.OwnerRow, ref.OwnerCol) {
		return 0, fmt.Errorf("%w: %s and %s", ErrMutualReference, grid.CellName(ref.OwnerRow, ref.OwnerCol), ref)
	}
	if e.depth >= e.limit {
		return 0, fmt.Errorf("%w: %s", ErrReferenceDepth, ref)
	}

	e.depth++
	val, err := e.Evaluate(target.Row, target.Col)
	e.depth--
	if err != nil {
		if errors.Is(err, ErrPropagatedFailure) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s: %w", ErrPropagatedFailure, ref, err)
	}
	return val, nil
}

// refersTo reports whether any reference token of cell points at (row, col).
func refersTo(cell grid.Cell, row, col int) bool {
	for _, token := range Tokenize(cell.Text) {
		if !IsReference(token) {
			continue
		}
		ref, err := Parse(cell.Row, cell.Col, token)
		if err == nil && ref.Row == row && ref.Col == col {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// isDigits rejects the sign Atoi would accept.
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
