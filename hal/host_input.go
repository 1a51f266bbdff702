package hal

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

type hostPointer struct {
	ch chan PointerEvent

	dragging bool
	lastX    int
	lastY    int
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, 64)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

func (p *hostPointer) emit(ev PointerEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// drag tracks a held button and emits the cursor delta since the last call.
func (p *hostPointer) drag(down bool, x, y int) {
	if !down {
		p.dragging = false
		return
	}
	if p.dragging && (x != p.lastX || y != p.lastY) {
		p.emit(PointerEvent{DX: float32(x - p.lastX), DY: float32(y - p.lastY)})
	}
	p.dragging = true
	p.lastX, p.lastY = x, y
}
