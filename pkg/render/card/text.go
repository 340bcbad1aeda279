package card

import (
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Measurer reports the rendered size of a string with the current font.
// *gg.Context satisfies it.
type Measurer interface {
	MeasureString(s string) (w, h float64)
}

// WrapLines breaks text into lines no wider than maxWidth using a greedy
// rule: words accumulate into a line until the next word would overflow, at
// which point the non-empty line is flushed and the word starts the next
// one. Words are never split, so a single word wider than maxWidth occupies
// a line of its own. The last line is always flushed, so empty text yields
// one empty line.
func WrapLines(m Measurer, text string, maxWidth float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if w, _ := m.MeasureString(candidate); w > maxWidth && line != "" {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

// textStyle is everything that influences how a block wraps and paints.
// Measure and draw passes must share one value.
type textStyle struct {
	face       font.Face
	color      color.Color
	maxWidth   float64
	lineHeight float64
}

// wrapText wraps text with style s and returns the consumed height,
// lineHeight times the number of lines. y is the first baseline. When draw
// is false only the font metrics of dc are used.
func wrapText(dc *gg.Context, text string, x, y float64, s textStyle, draw bool) float64 {
	dc.SetFontFace(s.face)
	lines := WrapLines(dc, text, s.maxWidth)
	if draw {
		dc.SetColor(s.color)
		for i, line := range lines {
			dc.DrawString(line, x, y+float64(i)*s.lineHeight)
		}
	}
	return s.lineHeight * float64(len(lines))
}
