package app

import (
	"replica/hal"
)

// orbitStep is the rotation applied per arrow key press, in radians.
const orbitStep = 0.08

// action is a viewer command bound to a key.
type action uint8

const (
	actionNone action = iota
	actionTheme
	actionQuality
	actionBridge
	actionReload
	actionHome
	actionQuit
	actionLeft
	actionRight
	actionUp
	actionDown
)

func actionFor(ev hal.KeyEvent) action {
	if !ev.Press {
		return actionNone
	}
	switch ev.Code {
	case hal.KeyEscape:
		return actionQuit
	case hal.KeyLeft:
		return actionLeft
	case hal.KeyRight:
		return actionRight
	case hal.KeyUp:
		return actionUp
	case hal.KeyDown:
		return actionDown
	case hal.KeyHome:
		return actionHome
	}
	switch ev.Rune {
	case 't', 'T':
		return actionTheme
	case 'h', 'H':
		return actionQuality
	case 'e', 'E':
		return actionBridge
	case 'r', 'R':
		return actionReload
	case ' ':
		return actionHome
	}
	return actionNone
}

// drainKeys returns the actions of every pending key event.
func drainKeys(in hal.Input) []action {
	if in == nil || in.Keyboard() == nil {
		return nil
	}
	ch := in.Keyboard().Events()
	var out []action
	for {
		select {
		case ev := <-ch:
			if a := actionFor(ev); a != actionNone {
				out = append(out, a)
			}
		default:
			return out
		}
	}
}

// drainDrag sums pending pointer drags.
func drainDrag(in hal.Input) (dx, dy float32) {
	if in == nil || in.Pointer() == nil {
		return 0, 0
	}
	ch := in.Pointer().Events()
	for {
		select {
		case ev := <-ch:
			dx += ev.DX
			dy += ev.DY
		default:
			return dx, dy
		}
	}
}
