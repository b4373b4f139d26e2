package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell represents a single cell content at a fixed position.
type Cell struct {
	Row  int
	Col  int
	Text string
}

// Name returns the cell name, e.g. row 0, col 1 -> "B1".
func (c Cell) Name() string {
	return CellName(c.Row, c.Col)
}

// Grid is a rectangular, read-only set of cells. Every row has Cols() cells.
type Grid struct {
	cells  [][]Cell
	cols   int
	filled int
}

// Build splits raw text into lines and each line on commas, padding short rows
// with empty cells up to the widest row. A single final newline terminates the
// last row; blank lines before it are rows of empty cells.
func Build(raw string) *Grid {
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return &Grid{}
	}
	lines := strings.Split(raw, "\n")

	values := make([][]string, len(lines))
	maxC := 0
	for r, line := range lines {
		values[r] = strings.Split(line, ",")
		if len(values[r]) > maxC {
			maxC = len(values[r])
		}
	}

	g := &Grid{cells: make([][]Cell, len(values)), cols: maxC}
	for r, row := range values {
		g.cells[r] = make([]Cell, maxC)
		for c := 0; c < maxC; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			g.cells[r][c] = Cell{Row: r, Col: c, Text: text}
			if strings.TrimSpace(text) != "" {
				g.filled++
			}
		}
	}
	return g
}

func (g *Grid) Rows() int {
	return len(g.cells)
}

func (g *Grid) Cols() int {
	return g.cols
}

// Size is the number of cells in the grid.
func (g *Grid) Size() int {
	return g.Rows() * g.Cols()
}

// Filled is the number of cells with non-blank text.
func (g *Grid) Filled() int {
	return g.filled
}

// At returns the cell at 0-based (row, col), false when outside the grid.
func (g *Grid) At(row, col int) (Cell, bool) {
	if row < 0 || col < 0 || row >= g.Rows() || col >= g.cols {
		return Cell{}, false
	}
	return g.cells[row][col], true
}

// ColToName: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColToName(col int) string {
	if col < 0 {
		return "?"
	}
	result := ""
	n := col + 1
	for n > 0 {
		n--
		result = string(rune('A'+(n%26))) + result
		n /= 26
	}
	return result
}

// CellName builds cell name from 0-based row,col -> e.g., row 0,col 0 -> "A1"
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", ColToName(col), row+1)
}

// ParseCellName parses names like A1, AA10 returning 0-based (row, col).
// Used for navigation; formula references are single-letter only.
func ParseCellName(name string) (int, int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, 0, false
	}

	i := 0
	for i < len(name) && isLetter(name[i]) {
		i++
	}
	if i == 0 || i >= len(name) {
		return 0, 0, false
	}
	colPart := strings.ToUpper(name[:i])
	col := 0
	for j := 0; j < len(colPart); j++ {
		col = col*26 + int(colPart[j]-'A') + 1
	}
	col = col - 1
	rowNum, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, 0, false
	}
	row := rowNum - 1
	if row < 0 || col < 0 {
		return 0, 0, false
	}
	return row, col, true
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
