package app

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

const maxInputLen = 256

// PopupInput shows a modal one-line prompt over the grid. It returns the
// entered text and true on Enter, or "" and false on Esc.
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	promptRunes := []rune(prompt)
	buf := []rune(initial)
	pos := len(buf)

	var left, top, boxW int
	const boxH = 3
	layout := func() {
		w, h := s.Size()
		boxW = maxInt(24, len(promptRunes)+len(buf)+6)
		if boxW > w-4 {
			boxW = w - 4
		}
		left = (w - boxW) / 2
		top = (h - boxH) / 2
	}

	drawBox := func() {
		for y := top; y < top+boxH; y++ {
			a.printTextFixedWidth(s, left, y, "", style, boxW)
		}
		drawBorder(s, left, top, boxW, boxH, style)

		x := left + 2
		y := top + 1
		a.printTextFixedWidth(s, x, y, prompt, style, len(promptRunes))
		x += len(promptRunes) + 1

		maxField := maxInt(1, boxW-4-len(promptRunes))
		start := 0
		if pos > maxField {
			start = pos - maxField
		}
		end := minInt(len(buf), start+maxField)
		a.printTextFixedWidth(s, x, y, string(buf[start:end]), style, maxField)
		s.ShowCursor(x+(pos-start), y)
	}

	redraw := func() {
		layout()
		a.Draw(s)
		drawBox()
		s.Show()
	}

	redraw()
	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return "", false
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				s.HideCursor()
				return "", false
			case tcell.KeyEnter:
				s.HideCursor()
				return string(buf), true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if pos > 0 {
					buf = append(buf[:pos-1], buf[pos:]...)
					pos--
				}
			case tcell.KeyDelete:
				if pos < len(buf) {
					buf = append(buf[:pos], buf[pos+1:]...)
				}
			case tcell.KeyLeft:
				if pos > 0 {
					pos--
				}
			case tcell.KeyRight:
				if pos < len(buf) {
					pos++
				}
			case tcell.KeyHome:
				pos = 0
			case tcell.KeyEnd:
				pos = len(buf)
			case tcell.KeyRune:
				if utf8.RuneCountInString(string(buf)) < maxInputLen {
					buf = append(buf[:pos], append([]rune{ev.Rune()}, buf[pos:]...)...)
					pos++
				}
			}
			redraw()
		case *tcell.EventResize:
			s.Sync()
			redraw()
		}
	}
}
