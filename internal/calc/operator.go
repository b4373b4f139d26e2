package calc

import "fmt"

// IsOperator reports whether token is exactly one of + - * /.
func IsOperator(token string) bool {
	switch token {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

// Apply computes left op right. Division by zero is not special-cased and
// yields ±Inf or NaN.
func Apply(left, right float64, op string) (float64, error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		return left / right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedOperator, op)
}
