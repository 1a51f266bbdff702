package hal

import (
	"sync"
	"time"
)

type hostTime struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	frame uint64

	clock func() time.Time
}

func newHostTime() *hostTime {
	return &hostTime{clock: time.Now}
}

func (t *hostTime) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.start.IsZero() {
		return 0
	}
	return t.now.Sub(t.start)
}

func (t *hostTime) Frame() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// step advances the clock by one frame.
func (t *hostTime) step() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	if t.start.IsZero() {
		t.start = now
	}
	t.now = now
	t.frame++
}
