package card

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Shape is the way a bar is drawn for its percentage.
type Shape int

const (
	// ShapeDot is a circle at the bar start, used for 0%.
	ShapeDot Shape = iota
	// ShapeRect is a plain thin rectangle for 0 < p < 1, where a pill radius
	// would exceed the bar width.
	ShapeRect
	// ShapePill has fully rounded ends.
	ShapePill
)

func (s Shape) String() string {
	switch s {
	case ShapeDot:
		return "dot"
	case ShapeRect:
		return "rect"
	default:
		return "pill"
	}
}

// ShapeFor picks the bar shape for a percentage.
func ShapeFor(pct float64) Shape {
	switch {
	case pct <= 0:
		return ShapeDot
	case pct < 1:
		return ShapeRect
	default:
		return ShapePill
	}
}

// BarWidth is contentWidth scaled by pct/100, clamped to [0, maxBarWidth].
func BarWidth(pct, contentWidth, maxBarWidth float64) float64 {
	w := contentWidth * pct / 100
	return math.Max(0, math.Min(w, maxBarWidth))
}

// Bar is one laid out option. Coordinates are relative to the top of the
// options block.
type Bar struct {
	Lines    []string
	Baseline float64 // first label line
	X, Y     float64 // bar origin
	Width    float64
	Height   float64
	Shape    Shape
	Color    color.Color
}

// OptionsBlock is the result of laying out every option.
type OptionsBlock struct {
	Bars   []Bar
	Height float64
}

// optionFaces are the faces the options block draws with.
type optionFaces struct {
	label    font.Face
	selected font.Face
	percent  font.Face
}

// renderOptions lays out each option top to bottom starting at y = 0 and,
// when draw is true, paints it: wrapped label, right-aligned percentage on
// the first label line and the bar below the label. The returned block
// records every offset so a measuring call and a drawing call can be
// compared.
func renderOptions(dc *gg.Context, p Params, pal palette, f optionFaces, opts []Option, selected int, draw bool) OptionsBlock {
	block := OptionsBlock{Bars: make([]Bar, 0, len(opts))}
	right := p.Width - p.PaddingX
	y := 0.0

	for i, o := range opts {
		barColor := pal.barColor(i, len(opts))
		style := textStyle{
			face:       f.label,
			color:      pal.text,
			maxWidth:   p.LabelWidth(),
			lineHeight: p.OptionLineHeight,
		}
		if selected == i+1 {
			style.face = f.selected
			style.color = barColor
		}

		baseline := y + p.OptionLineHeight
		if draw {
			dc.SetFontFace(f.percent)
			dc.SetColor(pal.text)
			dc.DrawStringAnchored(formatPercent(o.Percentage), right, baseline, 1, 0)
		}

		dc.SetFontFace(style.face)
		lines := WrapLines(dc, o.Label, style.maxWidth)
		labelHeight := wrapText(dc, o.Label, p.PaddingX, baseline, style, draw)

		bar := Bar{
			Lines:    lines,
			Baseline: baseline,
			X:        p.PaddingX,
			Y:        y + labelHeight + p.BarGap,
			Width:    BarWidth(o.Percentage, p.ContentWidth(), p.MaxBarWidth()),
			Height:   p.BarThickness,
			Shape:    ShapeFor(o.Percentage),
			Color:    barColor,
		}
		if draw {
			drawBar(dc, bar)
		}
		block.Bars = append(block.Bars, bar)

		y = bar.Y + bar.Height + p.OptionSpacing
	}

	block.Height = y
	return block
}

func drawBar(dc *gg.Context, b Bar) {
	dc.SetColor(b.Color)
	switch b.Shape {
	case ShapeDot:
		dc.DrawCircle(b.X, b.Y+b.Height/2, b.Height/2)
	case ShapeRect:
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	default:
		dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, math.Min(b.Height, b.Width)/2)
	}
	dc.Fill()
}

// formatPercent renders an option share as a whole percentage.
func formatPercent(pct float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(pct)))
}
