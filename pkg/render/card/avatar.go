package card

import (
	"image"

	"github.com/fogleman/gg"
)

// avatarCenter places the gauge so that the span from the arc top to the
// percentage baseline is vertically centred on a size x size canvas.
func avatarCenter(size float64, g Gauge) (cx, cy float64) {
	return size / 2, size/2 + (g.Radius+g.StrokeThickness/2-g.LabelDistanceFromCenter)/2
}

// drawAvatar renders the square gauge-only image in a single pass.
func drawAvatar(p Params, pal palette, f gaugeFaces, req Request) (image.Image, error) {
	if err := checkSurface(p.AvatarSize, p.AvatarSize, p.MaxCanvasHeight); err != nil {
		return nil, err
	}
	size := float64(p.AvatarSize)
	dc := gg.NewContext(p.AvatarSize, p.AvatarSize)
	dc.SetColor(pal.background)
	dc.Clear()

	cx, cy := avatarCenter(size, p.AvatarGauge)
	drawGauge(dc, cx, cy, p.AvatarGauge, pal, f, req.Overall, "")
	return dc.Image(), nil
}
