package effects

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func stripes(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.Black)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x += 10 {
			img.Set(x, y, color.NRGBA{R: 255, G: 200, B: 40, A: 255})
		}
	}
	return img
}

func TestGlitchDeterministic(t *testing.T) {
	src := stripes(120, 80)
	g := DefaultGlitch()

	a := g.Apply(src)
	b := g.Apply(src)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed should produce identical output")
	}

	g.Seed = 2
	if c := g.Apply(src); bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds should produce different output")
	}
}

func TestGlitchKeepsSourceAndSize(t *testing.T) {
	src := stripes(64, 48)
	before := append([]byte(nil), src.Pix...)

	out := DefaultGlitch().Apply(src)
	if !bytes.Equal(src.Pix, before) {
		t.Error("Apply modified its input")
	}
	if out.Bounds().Size() != src.Bounds().Size() {
		t.Errorf("size = %v, want %v", out.Bounds().Size(), src.Bounds().Size())
	}
}

func TestZeroGlitchIsIdentity(t *testing.T) {
	src := stripes(30, 20)
	var g Glitch
	if g.Enabled() {
		t.Fatal("zero Glitch should be disabled")
	}
	if out := g.Apply(src); !bytes.Equal(out.Pix, src.Pix) {
		t.Error("zero Glitch changed the image")
	}
}

func TestShiftChannels(t *testing.T) {
	src := imaging.New(10, 10, color.Black)
	src.Set(5, 5, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	out := shiftChannels(src, 2)
	if r := out.NRGBAAt(7, 5).R; r != 255 {
		t.Errorf("red should move right, got %d at (7,5)", r)
	}
	if g := out.NRGBAAt(3, 5).G; g != 255 {
		t.Errorf("green should move left, got %d at (3,5)", g)
	}
	if b := out.NRGBAAt(5, 7).B; b != 255 {
		t.Errorf("blue should move down, got %d at (5,7)", b)
	}
	if px := out.NRGBAAt(5, 5); px.R != 0 || px.G != 0 || px.B != 0 {
		t.Errorf("original spot should be dark, got %v", px)
	}
}
