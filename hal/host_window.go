//go:build cgo

package hal

import (
	"errors"
	"os"

	"replica/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a resizable desktop window, forwards input to the app and
// presents its frames. It blocks until the window closes or the app quits.
func RunWindow(cfg WindowConfig, newApp func(HAL) (App, error)) error {
	cfg = cfg.withDefaults()
	h := newHost(os.Stderr)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, app: app}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	app   App
	fbImg *ebiten.Image

	outW, outH int
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.ptr.poll()
	g.h.t.step()
	if err := g.app.Step(); err != nil {
		if errors.Is(err, ErrQuit) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	frame := g.app.Frame()
	if frame == nil {
		return
	}
	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	if fw <= 0 || fh <= 0 {
		return
	}
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != fw || g.fbImg.Bounds().Dy() != fh {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fw, fh)
	}
	g.fbImg.WritePixels(frame.Pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(fw), float64(sh)/float64(fh))
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(g.fbImg, op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.outW || outsideHeight != g.outH {
		g.outW, g.outH = outsideWidth, outsideHeight
		g.app.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
