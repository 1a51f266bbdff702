package app

import (
	"fmt"
	"image"
	"image/color"
	"runtime/debug"
	"strings"

	"replica/hal"
)

// recoverFrame turns a panic inside a frame step into an error, writes the
// panic and its stack to the host log and paints them over the frame.
func recoverFrame(h hal.HAL, frame *image.RGBA, err *error) {
	v := recover()
	if v == nil {
		return
	}
	stack := debug.Stack()
	*err = fmt.Errorf("frame panic: %v", v)

	lines := []string{"Replica Panic:", fmt.Sprintf("panic: %v", v), "stack:"}
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	}

	if l := h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}

	if frame == nil {
		return
	}
	c := canvas{img: frame}
	c.fill(frame.Rect, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	fg := color.RGBA{A: 0xFF}
	cols := max(1, (frame.Rect.Dx()-2*margin)/glyphWidth)
	y := margin
	for _, line := range lines {
		for len(line) > 0 {
			if y+lineHeight > frame.Rect.Dy() {
				return
			}
			chunk := clip(line, cols)
			c.text(margin, y, chunk, fg)
			y += lineHeight
			line = strings.TrimLeft(line[len(chunk):], " ")
		}
	}
}
