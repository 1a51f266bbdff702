package render

import "testing"

func TestScanlinesDimOddRows(t *testing.T) {
	tgt := NewRGBATarget(3, 4)
	tgt.Clear(RGB(200, 100, 50))
	Scanlines(tgt)
	for y := 0; y < 4; y++ {
		got := tgt.Pixel(1, y)
		want := RGB(200, 100, 50)
		if y%2 == 1 {
			want = RGB(160, 80, 40)
		}
		if got != want {
			t.Fatalf("row %d = %v, want %v", y, got, want)
		}
	}
}

func TestRendererScanlinesFlag(t *testing.T) {
	s, cam := testScene()
	s.Background = RGB(100, 100, 100)
	tgt := NewRGBATarget(4, 4)

	r := NewRenderer(NewDevice())
	r.Scanlines = true
	r.Render(tgt, s, cam)
	if even, odd := tgt.Pixel(0, 0), tgt.Pixel(0, 1); odd.R >= even.R {
		t.Fatalf("odd row %v not darker than even row %v", odd, even)
	}

	r.Scanlines = false
	r.Render(tgt, s, cam)
	if even, odd := tgt.Pixel(0, 0), tgt.Pixel(0, 1); odd != even {
		t.Fatalf("rows differ without scanlines: %v %v", even, odd)
	}
}
