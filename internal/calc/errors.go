package calc

import (
	"errors"
	"fmt"
)

// ErrEvaluation is the root of every per-cell failure.
var ErrEvaluation = errors.New("evaluation error")

var (
	ErrOutOfRange           = fmt.Errorf("%w: reference out of range", ErrEvaluation)
	ErrSelfReference        = fmt.Errorf("%w: self reference", ErrEvaluation)
	ErrMutualReference      = fmt.Errorf("%w: mutual reference", ErrEvaluation)
	ErrPropagatedFailure    = fmt.Errorf("%w: referenced cell failed", ErrEvaluation)
	ErrInsufficientOperands = fmt.Errorf("%w: insufficient operands", ErrEvaluation)
	ErrMalformedExpression  = fmt.Errorf("%w: malformed expression", ErrEvaluation)
	ErrUnrecognizedToken    = fmt.Errorf("%w: unrecognized token", ErrEvaluation)
	ErrUnrecognizedOperator = fmt.Errorf("%w: unrecognized operator", ErrEvaluation)
	ErrInvalidReference     = fmt.Errorf("%w: invalid reference", ErrEvaluation)
	ErrNonFinite            = fmt.Errorf("%w: result is not finite", ErrEvaluation)
	ErrReferenceDepth       = fmt.Errorf("%w: reference chain too deep", ErrEvaluation)
)
