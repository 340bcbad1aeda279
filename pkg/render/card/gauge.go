package card

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// TickCount is the number of radial marks on the gauge arc.
const TickCount = 6

// NeedleAngle maps a percentage onto the upper semicircle: 0 points left
// (π), 50 straight up and 100 right (2π). Screen y grows downward, so angles
// between π and 2π lie above the centre.
func NeedleAngle(pct int) float64 {
	return math.Pi + float64(pct)/100*math.Pi
}

// NeedleEnd returns the needle tip for a gauge centred at (cx, cy).
func NeedleEnd(cx, cy float64, g Gauge, pct int) (x, y float64) {
	a := NeedleAngle(pct)
	return cx + g.NeedleLength*math.Cos(a), cy + g.NeedleLength*math.Sin(a)
}

// TickAngles returns the angles of the gauge ticks, π + i·π/5 for i in 0..5.
func TickAngles() []float64 {
	angles := make([]float64, TickCount)
	for i := range angles {
		angles[i] = math.Pi + float64(i)*(math.Pi/5)
	}
	return angles
}

// QualitativeLabel returns the text of the first label whose bound is at
// least pct. When none matches the last label is the fallback; with no
// labels the result is empty.
func QualitativeLabel(pct int, labels []PercentLabel) string {
	for _, l := range labels {
		if l.UpTo >= pct {
			return l.Text
		}
	}
	if len(labels) == 0 {
		return ""
	}
	return labels[len(labels)-1].Text
}

// gaugeFaces are the faces a gauge draws text with. label may be nil.
type gaugeFaces struct {
	percentage font.Face
	label      font.Face
}

// drawGauge paints a gauge centred at (cx, cy): gradient arc, ticks, end
// caps, needle, hub, percentage text and, when label is non-empty and the
// profile has a label face, the qualitative caption.
func drawGauge(dc *gg.Context, cx, cy float64, g Gauge, pal palette, f gaugeFaces, pct int, label string) {
	r := g.Radius

	grad := gg.NewLinearGradient(cx-r, cy, cx+r, cy)
	grad.AddColorStop(0, pal.start)
	grad.AddColorStop(1, pal.end)
	dc.SetStrokeStyle(grad)
	dc.SetLineWidth(g.StrokeThickness)
	dc.SetLineCapButt()
	dc.NewSubPath()
	dc.DrawArc(cx, cy, r, math.Pi, 2*math.Pi)
	dc.Stroke()

	dc.SetColor(pal.needle)
	dc.SetLineWidth(g.TickThickness)
	for _, a := range TickAngles() {
		inner, outer := r-g.TickInnerOffset, r-g.TickOuterOffset
		dc.DrawLine(cx+inner*math.Cos(a), cy+inner*math.Sin(a), cx+outer*math.Cos(a), cy+outer*math.Sin(a))
		dc.Stroke()
	}

	if g.CapHeight > 0 {
		half := g.StrokeThickness / 2
		drawBottomRoundedRect(dc, cx-r-half, cy, g.StrokeThickness, g.CapHeight, g.CapRadius, pal.start)
		drawBottomRoundedRect(dc, cx+r-half, cy, g.StrokeThickness, g.CapHeight, g.CapRadius, pal.end)
	}

	nx, ny := NeedleEnd(cx, cy, g, pct)
	dc.SetColor(pal.needle)
	dc.SetLineWidth(g.NeedleThickness)
	dc.SetLineCapRound()
	dc.DrawLine(cx, cy, nx, ny)
	dc.Stroke()
	dc.SetLineCapButt()

	dc.DrawCircle(cx, cy, g.NeedleHubRadius)
	dc.Fill()

	dc.SetFontFace(f.percentage)
	dc.SetColor(pal.text)
	dc.DrawStringAnchored(fmt.Sprintf("%d%%", pct), cx, cy+g.LabelDistanceFromCenter, 0.5, 0)

	if label != "" && f.label != nil && g.LabelFontSize > 0 {
		dc.SetFontFace(f.label)
		dc.SetColor(pal.secondary)
		dc.DrawStringAnchored(label, cx, cy+g.LabelDistanceFromCenter+g.LabelGap, 0.5, 0)
	}
}

// drawBottomRoundedRect fills a rectangle whose top corners are square and
// bottom corners rounded with radius rad.
func drawBottomRoundedRect(dc *gg.Context, x, y, w, h, rad float64, c color.Color) {
	rad = math.Min(rad, math.Min(w/2, h))
	dc.NewSubPath()
	dc.MoveTo(x, y)
	dc.LineTo(x+w, y)
	dc.LineTo(x+w, y+h-rad)
	dc.DrawArc(x+w-rad, y+h-rad, rad, 0, math.Pi/2)
	dc.LineTo(x+rad, y+h)
	dc.DrawArc(x+rad, y+h-rad, rad, math.Pi/2, math.Pi)
	dc.ClosePath()
	dc.SetColor(c)
	dc.Fill()
}
