package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lugehorsam/postfix-spreadsheet/internal/calc"
	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
	"github.com/lugehorsam/postfix-spreadsheet/internal/render"
	"github.com/lugehorsam/postfix-spreadsheet/internal/storage"

	"github.com/gdamore/tcell/v2"
)

// App is a read-only terminal view of one rendered grid.
type App struct {
	// layout
	LeftGutter   int
	StatusLines  int
	DefaultWidth int
	MaxWidth     int
	CellPadding  int

	// grid data
	ColWidths []int
	Grid      *grid.Grid
	Results   [][]render.Result
	Options   render.Options

	// cursor / view
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	// UI state
	StatusMsg   string
	Quit        bool
	HelpVisible bool
}

func NewApp(g *grid.Grid, opts render.Options) *App {
	a := &App{
		LeftGutter:   5,
		StatusLines:  2,
		DefaultWidth: 10,
		MaxWidth:     32,
		CellPadding:  1,
		Grid:         g,
		Results:      render.Evaluate(g, opts),
		Options:      opts,
	}
	// fit columns to their widest rendered value
	a.ColWidths = make([]int, g.Cols())
	for c := range a.ColWidths {
		wc := a.DefaultWidth
		for r := 0; r < g.Rows(); r++ {
			wc = maxInt(wc, runeLen(a.GetDisplayText(r, c))+2*a.CellPadding)
		}
		a.ColWidths[c] = minInt(wc, a.MaxWidth)
	}
	return a
}

// Run draws and handles events until the user quits.
func (a *App) Run(s tcell.Screen) {
	for !a.Quit {
		a.EnsureCursorVisible(s)
		a.Draw(s)
		ev := s.PollEvent()
		switch tev := ev.(type) {
		case nil:
			// screen finalized
			return
		case *tcell.EventKey:
			a.HandleKeyEvent(s, tev)
		case *tcell.EventResize:
			s.Sync()
		}
	}
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	// help popup consumes keys, Esc or "?" closes it
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	a.StatusMsg = ""
	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		a.MoveCursor(-1, 0)
	case tcell.KeyDown:
		a.MoveCursor(1, 0)
	case tcell.KeyLeft:
		a.MoveCursor(0, -1)
	case tcell.KeyRight:
		a.MoveCursor(0, 1)
	case tcell.KeyPgUp:
		vr, _ := a.ComputeVisible(s)
		a.MoveCursor(-vr, 0)
	case tcell.KeyPgDn:
		vr, _ := a.ComputeVisible(s)
		a.MoveCursor(vr, 0)
	case tcell.KeyHome:
		a.CurRow, a.CurCol = 0, 0
	case tcell.KeyEnd:
		a.CurRow = maxInt(0, a.Grid.Rows()-1)
		a.CurCol = maxInt(0, a.Grid.Cols()-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.Quit = true
		case 'k':
			a.MoveCursor(-1, 0)
		case 'j':
			a.MoveCursor(1, 0)
		case 'h':
			a.MoveCursor(0, -1)
		case 'l':
			a.MoveCursor(0, 1)
		case ':':
			command, ok := a.PopupInput(s, ":", "")
			if ok {
				a.ExecuteCommand(command)
			}
		case '?':
			a.HelpVisible = true
		}
	}
}

// MoveCursor shifts the cursor, clamped to the grid.
func (a *App) MoveCursor(dRow, dCol int) {
	a.CurRow = clamp(a.CurRow+dRow, 0, a.Grid.Rows()-1)
	a.CurCol = clamp(a.CurCol+dCol, 0, a.Grid.Cols()-1)
}

// ----------------------------- Commands -----------------------------

func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "g", "goto":
		if len(parts) < 2 {
			a.StatusMsg = "usage: g <cell>"
			return
		}
		r, c, ok := grid.ParseCellName(parts[1])
		if !ok || r >= a.Grid.Rows() || c >= a.Grid.Cols() {
			a.StatusMsg = "no such cell: " + parts[1]
			return
		}
		a.CurRow, a.CurCol = r, c
	case "w", "write":
		if len(parts) < 2 {
			a.StatusMsg = "usage: w <file>"
			return
		}
		if err := storage.Save(parts[1], render.Render(a.Grid, a.Options)); err != nil {
			a.StatusMsg = err.Error()
			return
		}
		a.StatusMsg = "written " + parts[1]
	default:
		a.StatusMsg = "unknown command: " + parts[0]
	}
}

// ----------------------------- Display -----------------------------

// GetDisplayText is the rendered text of the cell at (r, c).
func (a *App) GetDisplayText(r, c int) string {
	if r < 0 || r >= len(a.Results) || c < 0 || c >= len(a.Results[r]) {
		return ""
	}
	return render.Format(a.Results[r][c], a.Options)
}

// ErrorReason explains why the cell at (r, c) failed, or "" when it did not.
func (a *App) ErrorReason(r, c int) string {
	if r < 0 || r >= len(a.Results) || c < 0 || c >= len(a.Results[r]) {
		return ""
	}
	err := a.Results[r][c].Err
	if err == nil {
		return ""
	}
	for _, known := range []error{
		calc.ErrSelfReference,
		calc.ErrMutualReference,
		calc.ErrReferenceDepth,
		calc.ErrOutOfRange,
		calc.ErrInsufficientOperands,
		calc.ErrMalformedExpression,
		calc.ErrUnrecognizedToken,
		calc.ErrNonFinite,
	} {
		if errors.Is(err, known) {
			msg := strings.TrimPrefix(known.Error(), calc.ErrEvaluation.Error()+": ")
			if errors.Is(err, calc.ErrPropagatedFailure) {
				msg = "via reference: " + msg
			}
			return msg
		}
	}
	return err.Error()
}

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()

	// header row: column names
	x := a.LeftGutter
	for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
		wc := a.ColWidths[c]
		hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if c == a.CurCol {
			hdrStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		a.printTextFixedWidth(s, x, 0, " "+grid.ColToName(c), hdrStyle, wc)
		x += wc
	}

	// rows
	y := 1
	for r := a.ViewRow; r < a.Grid.Rows() && y < h-a.StatusLines; r++ {
		gutterStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if r == a.CurRow {
			gutterStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		a.printTextFixedWidth(s, 0, y, fmt.Sprintf("%d", r+1), gutterStyle, a.LeftGutter-1)

		x = a.LeftGutter
		for c := a.ViewCol; c < len(a.ColWidths) && x < w; c++ {
			wc := a.ColWidths[c]
			style := tcell.StyleDefault
			if a.Results[r][c].Err != nil {
				style = style.Foreground(tcell.ColorRed)
			}
			if r == a.CurRow && c == a.CurCol {
				style = style.Background(tcell.ColorLightGray)
				if a.Results[r][c].Err == nil {
					style = style.Foreground(tcell.ColorBlack)
				}
			}
			// numbers are right aligned inside the padding
			text := a.GetDisplayText(r, c)
			innerW := maxInt(0, wc-2*a.CellPadding)
			if pad := innerW - runeLen(text); pad > 0 {
				text = strings.Repeat(" ", pad) + text
			}
			a.printTextFixedWidth(s, x, y, strings.Repeat(" ", a.CellPadding), style, a.CellPadding)
			a.printTextFixedWidth(s, x+a.CellPadding, y, text, style, innerW)
			a.printTextFixedWidth(s, x+a.CellPadding+innerW, y, "", style, wc-a.CellPadding-innerW)
			x += wc
		}
		y++
	}

	// Status area
	statusY := maxInt(0, h-a.StatusLines)
	statusStyle := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)

	statusLeft := "empty grid"
	if cell, ok := a.Grid.At(a.CurRow, a.CurCol); ok {
		statusLeft = fmt.Sprintf("%s  [%s]  = %s", cell.Name(), cell.Text, a.GetDisplayText(a.CurRow, a.CurCol))
	}
	a.printTextFixedWidth(s, 0, statusY, statusLeft, statusStyle, w)

	msg := a.StatusMsg
	if msg == "" {
		msg = a.ErrorReason(a.CurRow, a.CurCol)
	}
	if msg == "" {
		msg = "? help  : command  q quit"
	}
	a.printTextFixedWidth(s, 0, statusY+1, msg, statusStyle, w)

	if a.HelpVisible {
		help := "\n arrows / hjkl - move \n PgUp/PgDn/Home/End - scroll \n :g A1 - go to cell \n :w file - write rendered grid \n :q or q - quit \n ? / Esc - close help \n "
		a.drawHelpPopup(s, help)
	}

	s.HideCursor()
	s.Show()
}

// ----------------------------- Helpers -----------------------------

func (a *App) printTextFixedWidth(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	runes := []rune(str)
	for i := 0; i < width; i++ {
		var ch rune = ' '
		if i < len(runes) {
			ch = runes[i]
		}
		if x+i >= 0 && y >= 0 {
			s.SetContent(x+i, y, ch, nil, style)
		}
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	innerW := minInt(40, w-2*padding-2)
	lines := wrapText(help, innerW)
	if maxLines := h - 2*padding - 2; len(lines) > maxLines {
		lines = lines[:maxInt(0, maxLines)]
	}

	pw := innerW + padding*2
	ph := len(lines) + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	for yy := 0; yy < ph; yy++ {
		a.printTextFixedWidth(s, left, top+yy, "", style, pw)
	}
	drawBorder(s, left, top, pw, ph, style)
	for i, ln := range lines {
		a.printTextFixedWidth(s, left+padding, top+padding+i, ln, style, innerW)
	}
}

func drawBorder(s tcell.Screen, left, top, bw, bh int, style tcell.Style) {
	for x := left; x < left+bw; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.SetContent(x, top+bh-1, tcell.RuneHLine, nil, style)
	}
	for y := top; y < top+bh; y++ {
		s.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.SetContent(left+bw-1, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+bw-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+bh-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+bw-1, top+bh-1, tcell.RuneLRCorner, nil, style)
}

func wrapText(s string, max int) []string {
	if max <= 2 {
		return []string{s}
	}
	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if cur != "" && runeLen(cur)+1+runeLen(w) > max {
				result = append(result, cur)
				cur = ""
			}
			if cur != "" {
				cur += " "
			}
			cur += w
		}
		result = append(result, cur)
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}

// ----------------------------- Viewport / Geometry -----------------------------

func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	w, h := s.Size()
	usableW := maxInt(1, w-a.LeftGutter)
	visibleRows = maxInt(1, h-a.StatusLines-1)

	sumW := 0
	for c := a.ViewCol; c < len(a.ColWidths); c++ {
		if sumW+a.ColWidths[c] > usableW {
			break
		}
		sumW += a.ColWidths[c]
		visibleCols++
	}
	return visibleRows, maxInt(1, visibleCols)
}

func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	visibleRows, visibleCols := a.ComputeVisible(s)

	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else if a.CurCol >= a.ViewCol+visibleCols {
		a.ViewCol = a.CurCol - visibleCols + 1
	}
	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
	} else if a.CurRow >= a.ViewRow+visibleRows {
		a.ViewRow = a.CurRow - visibleRows + 1
	}
	a.ViewCol = clamp(a.ViewCol, 0, len(a.ColWidths)-1)
	a.ViewRow = clamp(a.ViewRow, 0, a.Grid.Rows()-1)
}

// ----------------------------- Misc -----------------------------

// clamp limits v to [lo, hi]; an empty range (hi < lo) yields lo.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
