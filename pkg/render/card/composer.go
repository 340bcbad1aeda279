package card

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/fonts"
)

// CardLayout is the outcome of the measurement pass: the exact canvas size
// and the vertical offset of every section. Y values of text are baselines.
type CardLayout struct {
	Width  int
	Height int

	HeaderY    float64
	TextY      float64
	TextLines  []string
	TextHeight float64

	PanelX, PanelY float64
	GaugeX, GaugeY float64

	// OptionsY is where the options block image is pasted.
	OptionsY int
	Options  OptionsBlock

	FooterY      float64
	FooterAscent float64
}

// cardFaces are created once per render call and shared by both passes.
type cardFaces struct {
	header, text, footer font.Face
	options              optionFaces
	gauge                gaugeFaces
}

func newCardFaces(fs *fonts.Set, p Params) cardFaces {
	return cardFaces{
		header: fs.Face(fonts.SemiBold, p.HeaderFontSize),
		text:   fs.Face(fonts.Regular, p.TextFontSize),
		footer: fs.Face(fonts.Regular, p.FooterFontSize),
		options: optionFaces{
			label:    fs.Face(fonts.Regular, p.OptionFontSize),
			selected: fs.Face(fonts.SemiBold, p.OptionFontSize),
			percent:  fs.Face(fonts.Display, p.PercentFontSize),
		},
		gauge: newGaugeFaces(fs, p.MainGauge),
	}
}

func newGaugeFaces(fs *fonts.Set, g Gauge) gaugeFaces {
	f := gaugeFaces{percentage: fs.Face(fonts.Display, g.PercentageFontSize)}
	if g.LabelFontSize > 0 {
		f.label = fs.Face(fonts.Regular, g.LabelFontSize)
	}
	return f
}

func (p Params) headerText(req Request) string { return fmt.Sprintf(p.HeaderFormat, req.Date) }
func (p Params) footerText(req Request) string { return fmt.Sprintf(p.FooterFormat, req.Votes) }

// measureCard is pass one. dc only provides font metrics, so any canvas
// size works; text width measurement does not depend on it.
func measureCard(dc *gg.Context, p Params, pal palette, f cardFaces, req Request) (CardLayout, error) {
	l := CardLayout{Width: int(math.Round(p.Width))}

	l.HeaderY = p.PaddingY
	l.TextY = l.HeaderY + p.HeaderGap

	textStyle := p.questionStyle(f, pal)
	dc.SetFontFace(textStyle.face)
	l.TextLines = WrapLines(dc, req.Question, textStyle.maxWidth)
	l.TextHeight = wrapText(dc, req.Question, p.PaddingX, l.TextY, textStyle, false)

	l.PanelX = (p.Width - p.PanelWidth) / 2
	l.PanelY = l.TextY + l.TextHeight + p.TextPanelGap
	l.GaugeX = p.Width / 2
	l.GaugeY = l.PanelY + p.PanelHeight/p.PanelCenterRatio

	l.OptionsY = int(math.Round(l.PanelY + p.PanelHeight + p.PanelOptionsGap))
	l.Options = renderOptions(dc, p, pal, f.options, req.Options, req.Selected, false)

	l.FooterAscent = float64(f.footer.Metrics().Ascent.Ceil())
	l.FooterY = float64(l.OptionsY) + math.Ceil(l.Options.Height) + p.OptionsFooterGap + l.FooterAscent

	total := l.FooterY + p.PaddingY
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return CardLayout{}, errors.New(errors.ErrCodeRenderSurface, "card height is not finite")
	}
	l.Height = int(math.Ceil(total))
	if err := checkSurface(l.Width, l.Height, p.MaxCanvasHeight); err != nil {
		return CardLayout{}, err
	}
	return l, nil
}

// drawCard is pass two. It paints onto a canvas of exactly l.Width x
// l.Height and re-runs every wrap, failing if any block consumes a height
// different from the one measured.
func drawCard(p Params, pal palette, f cardFaces, req Request, l CardLayout) (image.Image, error) {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(pal.background)
	dc.Clear()

	dc.SetFontFace(f.header)
	dc.SetColor(pal.secondary)
	dc.DrawString(p.headerText(req), p.PaddingX, l.HeaderY)

	if h := wrapText(dc, req.Question, p.PaddingX, l.TextY, p.questionStyle(f, pal), true); h != l.TextHeight {
		return nil, errors.New(errors.ErrCodeInternal, "question text drew %v px, measured %v px", h, l.TextHeight)
	}

	dc.SetColor(pal.panel)
	dc.DrawRoundedRectangle(l.PanelX, l.PanelY, p.PanelWidth, p.PanelHeight, p.PanelRadius)
	dc.Fill()

	drawGauge(dc, l.GaugeX, l.GaugeY, p.MainGauge, pal, f.gauge, req.Overall, QualitativeLabel(req.Overall, req.Labels))

	block, err := drawOptionsImage(p, pal, f.options, req, l)
	if err != nil {
		return nil, err
	}
	dc.DrawImage(block, 0, l.OptionsY)

	dc.SetFontFace(f.footer)
	dc.SetColor(pal.secondary)
	dc.DrawString(p.footerText(req), p.PaddingX, l.FooterY)

	return dc.Image(), nil
}

// drawOptionsImage renders the options block on its own transparent canvas
// sized to the measured block height.
func drawOptionsImage(p Params, pal palette, f optionFaces, req Request, l CardLayout) (image.Image, error) {
	h := int(math.Ceil(l.Options.Height))
	if err := checkSurface(l.Width, h, p.MaxCanvasHeight); err != nil {
		return nil, err
	}
	dc := gg.NewContext(l.Width, h)
	drawn := renderOptions(dc, p, pal, f, req.Options, req.Selected, true)
	if drawn.Height != l.Options.Height {
		return nil, errors.New(errors.ErrCodeInternal, "options drew %v px, measured %v px", drawn.Height, l.Options.Height)
	}
	return dc.Image(), nil
}

func (p Params) questionStyle(f cardFaces, pal palette) textStyle {
	return textStyle{
		face:       f.text,
		color:      pal.text,
		maxWidth:   p.ContentWidth(),
		lineHeight: p.LineHeight,
	}
}

func checkSurface(w, h, maxHeight int) error {
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeRenderSurface, "invalid canvas size %dx%d", w, h)
	}
	if h > maxHeight {
		return errors.New(errors.ErrCodeRenderSurface, "canvas height %d exceeds limit %d", h, maxHeight)
	}
	return nil
}
