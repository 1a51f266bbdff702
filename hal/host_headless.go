package hal

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"
)

// RunHeadless runs the app on a ticker without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) (App, error), cfg HeadlessConfig) error {
	h := newHost(os.Stderr)
	app, err := newApp(h)
	if err != nil {
		return err
	}
	return runHeadless(ctx, h, app, cfg)
}

func runHeadless(ctx context.Context, h *hostHAL, app App, cfg HeadlessConfig) (err error) {
	cfg = cfg.withDefaults()
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	app.Layout(cfg.Width, cfg.Height)

	defer func() {
		if cfg.Snapshot == "" {
			return
		}
		frame := app.Frame()
		if frame == nil {
			if err == nil {
				err = errors.New("snapshot: no frame")
			}
			return
		}
		if werr := WritePNG(cfg.Snapshot, frame); werr != nil && err == nil {
			err = werr
		}
	}()

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if err := app.Step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
		}
	}
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return f.Close()
}
