package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/lugehorsam/postfix-spreadsheet/internal/calc"
	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
)

// Options controls how evaluated cells are turned into text.
type Options struct {
	Precision     int    // decimal places, trailing zeros trimmed
	ErrorMarker   string // text for any failed cell
	LineSeparator string
	Memoize       bool // reuse cell results within one render pass
}

func DefaultOptions() Options {
	return Options{
		Precision:     3,
		ErrorMarker:   "#ERR",
		LineSeparator: "\n",
		Memoize:       true,
	}
}

// Result is the outcome of evaluating one cell.
type Result struct {
	Value float64
	Err   error
}

// Evaluate computes every cell of g in row-major order. A failing cell never
// stops the others.
func Evaluate(g *grid.Grid, opts Options) [][]Result {
	var evalOpts []calc.Option
	if opts.Memoize {
		evalOpts = append(evalOpts, calc.WithMemo())
	}
	e := calc.NewEvaluator(g, evalOpts...)

	out := make([][]Result, g.Rows())
	for r := range out {
		out[r] = make([]Result, g.Cols())
		for c := range out[r] {
			val, err := e.Evaluate(r, c)
			out[r][c] = Result{Value: val, Err: err}
		}
	}
	return out
}

// Format renders one result: the error marker, or the value rounded to
// opts.Precision places without trailing zeros or exponent.
func Format(res Result, opts Options) string {
	if res.Err != nil || math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
		return opts.ErrorMarker
	}
	s := strconv.FormatFloat(res.Value, 'f', opts.Precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Render evaluates g and joins the formatted cells with commas and the rows
// with opts.LineSeparator.
func Render(g *grid.Grid, opts Options) string {
	results := Evaluate(g, opts)

	lines := make([]string, len(results))
	for r, row := range results {
		cells := make([]string, len(row))
		for c, res := range row {
			cells[c] = Format(res, opts)
		}
		lines[r] = strings.Join(cells, ",")
	}
	return strings.Join(lines, opts.LineSeparator)
}
