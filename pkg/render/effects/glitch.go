// Package effects post-processes rendered cards.
//
// The only effect is a "glitch": horizontal bands copied sideways, a small
// RGB channel split and sparse brightness noise. All randomness comes from a
// seeded generator, so the same image and [Glitch] value always produce the
// same output and cached results stay valid.
package effects

import (
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

// Glitch configures the effect. The zero value leaves images unchanged.
type Glitch struct {
	// Bands is the number of horizontal strips copied to a random x.
	Bands int `toml:"bands"`
	// MaxBandHeight bounds the strip height in pixels.
	MaxBandHeight int `toml:"max_band_height"`
	// ChannelShift offsets red right, green left and blue down by this many pixels.
	ChannelShift int `toml:"channel_shift"`
	// NoiseRate is the probability that a pixel receives noise.
	NoiseRate float64 `toml:"noise_rate"`
	// NoiseAmplitude bounds the brightness change of a noisy pixel.
	NoiseAmplitude int    `toml:"noise_amplitude"`
	Seed           uint64 `toml:"seed"`
}

// DefaultGlitch returns a moderate effect.
func DefaultGlitch() Glitch {
	return Glitch{
		Bands:          12,
		MaxBandHeight:  10,
		ChannelShift:   5,
		NoiseRate:      0.005,
		NoiseAmplitude: 30,
		Seed:           1,
	}
}

// Enabled reports whether g changes anything.
func (g Glitch) Enabled() bool {
	return g.Bands > 0 || g.ChannelShift > 0 || (g.NoiseRate > 0 && g.NoiseAmplitude > 0)
}

// Apply returns a glitched copy of src; src is not modified.
func (g Glitch) Apply(src image.Image) *image.NRGBA {
	img := imaging.Clone(src)
	if !g.Enabled() || img.Bounds().Empty() {
		return img
	}
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed^0x9e3779b97f4a7c15))

	img = g.displaceBands(img, rng)
	img = shiftChannels(img, g.ChannelShift)
	addNoise(img, rng, g.NoiseRate, g.NoiseAmplitude)
	return img
}

func (g Glitch) displaceBands(img *image.NRGBA, rng *rand.Rand) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	maxH := g.MaxBandHeight
	if maxH <= 0 {
		maxH = 10
	}
	for i := 0; i < g.Bands; i++ {
		x, y := rng.IntN(w), rng.IntN(h)
		bw := rng.IntN(w - x + 1)
		bh := min(rng.IntN(maxH+1), h-y)
		if bw == 0 || bh == 0 {
			continue
		}
		band := imaging.Crop(img, image.Rect(x, y, x+bw, y+bh))
		img = imaging.Paste(img, band, image.Pt(rng.IntN(w-bw+1), y))
	}
	return img
}

// shiftChannels samples red from the left, green from the right and blue
// from above, clamping at the edges.
func shiftChannels(src *image.NRGBA, shift int) *image.NRGBA {
	if shift <= 0 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	at := func(x, y int) int { return y*src.Stride + x*4 }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := at(x, y)
			dst.Pix[i+0] = src.Pix[at(max(0, x-shift), y)+0]
			dst.Pix[i+1] = src.Pix[at(min(w-1, x+shift), y)+1]
			dst.Pix[i+2] = src.Pix[at(x, max(0, y-shift))+2]
			dst.Pix[i+3] = src.Pix[i+3]
		}
	}
	return dst
}

func addNoise(img *image.NRGBA, rng *rand.Rand, rate float64, amplitude int) {
	if rate <= 0 || amplitude <= 0 {
		return
	}
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if rng.Float64() >= rate {
			continue
		}
		n := rng.IntN(2*amplitude+1) - amplitude
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = clamp8(int(img.Pix[i+c]) + n)
		}
	}
}

func clamp8(v int) uint8 {
	return uint8(max(0, min(255, v)))
}
