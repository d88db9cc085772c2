package braille

import (
	"strings"

	"github.com/muurk/brlreview/internal/a11y"
	"github.com/muurk/brlreview/internal/logging"
)

// Refresh renders the viewport line and sends it to the display.
//
// With panToCursor the viewport scrolls so the focused region's cursor is
// visible. A positive targetCursorCell asks for the cursor to land on that
// 1-based cell; a negative one counts from the right edge (-1 is the last
// cell). When targetCursorCell is 0 and the focus is the same text line as
// the last refresh, the cursor cell follows the caret movement instead of
// jumping.
func (e *Engine) Refresh(panToCursor bool, targetCursorCell int, stopFlash bool) {
	settings := e.settings()
	if !settings.Enabled {
		if e.state != StateDisconnected || e.retryTimer != nil {
			e.Shutdown()
		}
		e.lastText = TextInfo{}
		return
	}

	if stopFlash && e.flash != nil {
		e.KillFlash(false)
	}

	width := e.displayWidth()
	if len(e.lines) == 0 {
		e.lastText = TextInfo{}
		e.output(Frame{
			Text:  strings.Repeat(" ", width),
			Mask:  make([]byte, width),
			Width: width,
		})
		return
	}
	if e.viewport.Line >= len(e.lines) {
		e.viewport.Line = len(e.lines) - 1
	}

	if targetCursorCell < 0 {
		targetCursorCell = max(0, width+targetCursorCell+1)
	}

	info := e.lines[e.viewport.Line].Info(e.focus, e.renderOptions(settings), e.opts.Translator, width)
	cursorOffset := -1
	if info.FocusOffset >= 0 && e.focus.CursorOffset() >= 0 {
		cursorOffset = info.FocusOffset + e.focus.CursorOffset()
	}

	current := e.textInfo()
	if targetCursorCell == 0 && current.Obj != a11y.None &&
		current.Obj == e.lastText.Obj &&
		current.LineOffset == e.lastText.LineOffset &&
		e.lastText.CursorCell > 0 {
		targetCursorCell = min(max(e.lastText.CursorCell+current.CaretOffset-e.lastText.CaretOffset, 1), width)
	}

	if panToCursor && cursorOffset >= 0 {
		x := e.viewport.X
		switch {
		case info.Len() <= width && cursorOffset < width:
			x = 0
		case targetCursorCell > 0:
			x = max(0, cursorOffset-targetCursorCell+1)
		case cursorOffset < x:
			x = cursorOffset
		case cursorOffset >= x+width:
			x = cursorOffset - width + 1
		}
		e.viewport.X = x
	}

	start, end := e.visibleSpan(info, width, cursorOffset, settings.WordWrap)
	e.viewport.X = start

	cursorCell := 0
	if c := cursorOffset - start; cursorOffset >= 0 && c >= 0 && c < width {
		cursorCell = c + 1
	}

	runes := []rune(info.Text)
	visible := string(runes[start:end])
	mask := make([]byte, width)
	copy(mask, info.Mask[start:end])
	text := visible + strings.Repeat(" ", width-(end-start))

	if current.Obj != a11y.None {
		current.CursorCell = cursorCell
		e.lastText = current
	} else {
		e.lastText = TextInfo{}
	}

	e.output(Frame{
		Line:   info.Text,
		Offset: start,
		Text:   text,
		Mask:   mask,
		Cursor: cursorCell,
		Width:  width,
	})
}

// textInfo describes the focused text line, or is empty when the focus is
// not a Text region.
func (e *Engine) textInfo() TextInfo {
	if e.focus == nil || e.focus.Kind() != KindText {
		return TextInfo{}
	}
	return TextInfo{
		Obj:         e.focus.Object(),
		CaretOffset: e.focus.CaretOffset(),
		LineOffset:  e.focus.LineOffset(),
	}
}

func (e *Engine) output(f Frame) {
	e.lastFrame = f
	logging.LogBrailleLine(f.Line, f.Text, f.Cursor)

	if e.state == StateReady {
		cells := Cells{Text: f.Text, Mask: f.Mask, Cursor: f.Cursor}
		e.submit(&task{
			op:       "write",
			coalesce: "write",
			run: func(dev Device) error {
				return dev.Write(cells)
			},
		})
	}

	if e.opts.Monitor != nil {
		e.opts.Monitor(f)
	}
}

// visibleSpan returns the [start, end) cells shown for the viewport. With
// word wrap on a line longer than the display, the span is snapped to the
// line's ranges so no word is cut, and moved to the cursor's range if the
// cursor would fall outside it.
func (e *Engine) visibleSpan(info LineInfo, width, cursorOffset int, wordWrap bool) (int, int) {
	n := info.Len()
	x := min(max(e.viewport.X, 0), max(n-1, 0))

	if !wordWrap || n <= width {
		return x, min(x+width, n)
	}

	if r, ok := rangeAt(info.Ranges, x); ok && r.Len() <= width {
		x = r.Start
	}
	end := wrapEnd(info.Ranges, x, width, n)

	if cursorOffset >= 0 && (cursorOffset < x || cursorOffset >= end) {
		if r, ok := rangeAt(info.Ranges, min(cursorOffset, n-1)); ok {
			x = r.Start
			end = wrapEnd(info.Ranges, x, width, n)
		}
	}
	return x, end
}

func rangeAt(ranges []Range, offset int) (Range, bool) {
	for _, r := range ranges {
		if r.Contains(offset) {
			return r, true
		}
	}
	return Range{}, false
}

// wrapEnd returns the end of the last whole range starting at or after x
// that fits in width cells. When none fits, the plain width is used.
func wrapEnd(ranges []Range, x, width, n int) int {
	end := x
	for _, r := range ranges {
		if r.Start < x {
			continue
		}
		if r.End-x > width {
			break
		}
		end = r.End
	}
	if end == x {
		end = min(x+width, n)
	}
	return end
}

func (e *Engine) currentInfo() (LineInfo, int, bool) {
	width := e.displayWidth()
	if len(e.lines) == 0 {
		return LineInfo{}, width, false
	}
	settings := e.settings()
	info := e.lines[e.viewport.Line].Info(e.focus, e.renderOptions(settings), e.opts.Translator, width)
	return info, width, settings.WordWrap
}

// PanLeft moves the viewport left by amount cells, or by a display width
// when amount is 0. With word wrap a full pan stops on a range boundary.
// Returns whether the viewport moved.
func (e *Engine) PanLeft(amount int) bool {
	info, width, wordWrap := e.currentInfo()
	old := e.viewport.X

	if wordWrap && amount == 0 && info.Len() > width {
		e.viewport.X = prevWrapStart(info.Ranges, old, width)
		return e.viewport.X != old
	}

	if amount == 0 {
		amount = width
	}
	if old > 0 {
		e.viewport.X = max(0, old-amount)
	}
	return e.viewport.X != old
}

// PanRight moves the viewport right by amount cells, or by a display width
// when amount is 0. It never pans past the end of the line. With word wrap
// a full pan starts at the first range not currently shown.
func (e *Engine) PanRight(amount int) bool {
	info, width, wordWrap := e.currentInfo()
	old := e.viewport.X
	n := info.Len()

	if wordWrap && amount == 0 && n > width {
		_, end := e.visibleSpan(info, width, -1, true)
		if end < n {
			e.viewport.X = end
		}
		return e.viewport.X != old
	}

	if amount == 0 {
		amount = width
	}
	if next := old + amount; next < n {
		e.viewport.X = next
	}
	return e.viewport.X != old
}

// prevWrapStart finds the earliest range start s before x with x-s within
// width, walking back over contiguous ranges.
func prevWrapStart(ranges []Range, x, width int) int {
	start := x
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		if r.Start >= x {
			continue
		}
		if x-r.Start > width {
			break
		}
		start = r.Start
	}
	if start == x && x > 0 {
		start = max(0, x-width)
	}
	return start
}

// PanToOffset pans so the 0-based line offset is visible, as close to the
// left edge as the pan steps allow.
func (e *Engine) PanToOffset(offset int) {
	for offset < e.viewport.X {
		if !e.PanLeft(0) {
			break
		}
	}
	width := e.displayWidth()
	for offset >= e.viewport.X+width {
		if !e.PanRight(0) {
			break
		}
	}
}
