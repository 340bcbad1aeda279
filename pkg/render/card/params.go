package card

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/pollcard/pkg/errors"
)

// Profile selects the gauge geometry.
type Profile int

const (
	// Main is the gauge inside the result card panel.
	Main Profile = iota
	// Avatar is the larger, label-free gauge of the square image.
	Avatar
)

func (p Profile) String() string {
	if p == Avatar {
		return "avatar"
	}
	return "main"
}

// Gauge holds the geometry of one size profile. Offsets are in pixels.
type Gauge struct {
	Radius          float64 `toml:"radius"`
	StrokeThickness float64 `toml:"stroke_thickness"`
	NeedleThickness float64 `toml:"needle_thickness"`
	NeedleHubRadius float64 `toml:"needle_hub_radius"`
	NeedleLength    float64 `toml:"needle_length"`
	TickThickness   float64 `toml:"tick_thickness"`
	// TickInnerOffset and TickOuterOffset are insets from Radius towards the
	// centre. A tick runs from Radius-TickInnerOffset to Radius-TickOuterOffset.
	TickInnerOffset float64 `toml:"tick_inner_offset"`
	TickOuterOffset float64 `toml:"tick_outer_offset"`

	PercentageFontSize float64 `toml:"percentage_font_size"`
	// LabelFontSize of 0 disables the qualitative label.
	LabelFontSize float64 `toml:"label_font_size"`
	// LabelDistanceFromCenter is the baseline offset of the percentage text.
	LabelDistanceFromCenter float64 `toml:"label_distance_from_center"`
	// LabelGap is the baseline offset of the qualitative label below the percentage.
	LabelGap float64 `toml:"label_gap"`

	CapHeight float64 `toml:"cap_height"`
	CapRadius float64 `toml:"cap_radius"`
}

// Theme holds every color as a #RRGGBB string.
type Theme struct {
	Background    string   `toml:"background"`
	Panel         string   `toml:"panel"`
	Text          string   `toml:"text"`
	SecondaryText string   `toml:"secondary_text"`
	Needle        string   `toml:"needle"`
	GradientStart string   `toml:"gradient_start"`
	GradientEnd   string   `toml:"gradient_end"`
	Palette       []string `toml:"palette"`
}

// Params is the single layout-parameter table shared by the measure and
// draw passes. Values are in pixels unless stated otherwise.
type Params struct {
	Width    float64 `toml:"width"`
	PaddingX float64 `toml:"padding_x"`
	PaddingY float64 `toml:"padding_y"`

	// HeaderGap separates the header baseline from the first question baseline.
	HeaderGap float64 `toml:"header_gap"`
	// TextPanelGap separates the question block from the gauge panel.
	TextPanelGap float64 `toml:"text_panel_gap"`
	// PanelOptionsGap separates the gauge panel from the options block.
	PanelOptionsGap float64 `toml:"panel_options_gap"`
	// OptionsFooterGap separates the options block from the footer text.
	OptionsFooterGap float64 `toml:"options_footer_gap"`

	PanelWidth  float64 `toml:"panel_width"`
	PanelHeight float64 `toml:"panel_height"`
	PanelRadius float64 `toml:"panel_radius"`
	// PanelCenterRatio places the gauge centre at PanelHeight/PanelCenterRatio
	// below the panel top.
	PanelCenterRatio float64 `toml:"panel_center_ratio"`

	HeaderFontSize float64 `toml:"header_font_size"`
	TextFontSize   float64 `toml:"text_font_size"`
	LineHeight     float64 `toml:"line_height"`
	FooterFontSize float64 `toml:"footer_font_size"`

	OptionFontSize   float64 `toml:"option_font_size"`
	OptionLineHeight float64 `toml:"option_line_height"`
	PercentFontSize  float64 `toml:"percent_font_size"`
	// PercentColumn is reserved at the right edge for the percentage text.
	PercentColumn float64 `toml:"percent_column"`
	BarThickness  float64 `toml:"bar_thickness"`
	// BarGap separates the last label baseline from the bar top.
	BarGap        float64 `toml:"bar_gap"`
	OptionSpacing float64 `toml:"option_spacing"`
	// BarRightInset keeps full bars clear of the right margin.
	BarRightInset float64 `toml:"bar_right_inset"`

	AvatarSize      int `toml:"avatar_size"`
	MaxCanvasHeight int `toml:"max_canvas_height"`

	// HeaderFormat receives the date, FooterFormat the vote count.
	HeaderFormat string `toml:"header_format"`
	FooterFormat string `toml:"footer_format"`

	MainGauge   Gauge `toml:"main_gauge"`
	AvatarGauge Gauge `toml:"avatar_gauge"`
	Theme       Theme `toml:"theme"`
}

// DefaultParams returns the stock card layout: a 723px wide card with a
// 540x270 gauge panel and a 640px avatar.
func DefaultParams() Params {
	return Params{
		Width:            723,
		PaddingX:         20,
		PaddingY:         40,
		HeaderGap:        30,
		TextPanelGap:     30,
		PanelOptionsGap:  30,
		OptionsFooterGap: 20,

		PanelWidth:       540,
		PanelHeight:      270,
		PanelRadius:      10,
		PanelCenterRatio: 1.7,

		HeaderFontSize: 20,
		TextFontSize:   20,
		LineHeight:     25,
		FooterFontSize: 20,

		OptionFontSize:   20,
		OptionLineHeight: 25,
		PercentFontSize:  20,
		PercentColumn:    100,
		BarThickness:     8,
		BarGap:           10,
		OptionSpacing:    15,
		BarRightInset:    80,

		AvatarSize:      640,
		MaxCanvasHeight: 16384,

		HeaderFormat: "Опрос от %s",
		FooterFormat: "Проголосовало: %d",

		MainGauge: Gauge{
			Radius:                  125,
			StrokeThickness:         20,
			NeedleThickness:         4,
			NeedleHubRadius:         8,
			NeedleLength:            110,
			TickThickness:           4,
			TickInnerOffset:         20,
			TickOuterOffset:         35,
			PercentageFontSize:      32,
			LabelFontSize:           24,
			LabelDistanceFromCenter: 48,
			LabelGap:                30,
			CapHeight:               10,
			CapRadius:               5,
		},
		AvatarGauge: Gauge{
			Radius:                  250,
			StrokeThickness:         40,
			NeedleThickness:         8,
			NeedleHubRadius:         16,
			NeedleLength:            220,
			TickThickness:           8,
			TickInnerOffset:         40,
			TickOuterOffset:         70,
			PercentageFontSize:      64,
			LabelDistanceFromCenter: 96,
			CapHeight:               20,
			CapRadius:               10,
		},
		Theme: Theme{
			Background:    "#000000",
			Panel:         "#333333",
			Text:          "#FFFFFF",
			SecondaryText: "#AAAAAA",
			Needle:        "#FFFFFF",
			GradientStart: "#FFF500",
			GradientEnd:   "#FF0000",
			Palette:       []string{"#FFF500", "#FFCC00", "#FFA300", "#FF7A00", "#FF0000"},
		},
	}
}

// Gauge returns the geometry for a profile.
func (p Params) Gauge(profile Profile) Gauge {
	if profile == Avatar {
		return p.AvatarGauge
	}
	return p.MainGauge
}

// ContentWidth is the card width between the horizontal paddings.
func (p Params) ContentWidth() float64 {
	return p.Width - 2*p.PaddingX
}

// LabelWidth is the wrap width of option labels.
func (p Params) LabelWidth() float64 {
	return p.ContentWidth() - p.PercentColumn
}

// MaxBarWidth caps bar growth below the right margin.
func (p Params) MaxBarWidth() float64 {
	return p.ContentWidth() - p.BarRightInset
}

// Validate checks that the table describes a drawable card.
func (p Params) Validate() error {
	if p.Width <= 0 || p.ContentWidth() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "card width %v leaves no content area", p.Width)
	}
	if p.LabelWidth() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "percent column %v leaves no room for labels", p.PercentColumn)
	}
	if p.MaxBarWidth() <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "bar right inset %v leaves no room for bars", p.BarRightInset)
	}
	if p.LineHeight <= 0 || p.OptionLineHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "line heights must be positive")
	}
	if p.PanelWidth <= 0 || p.PanelHeight <= 0 || p.PanelWidth > p.Width {
		return errors.New(errors.ErrCodeInvalidConfig, "panel %vx%v does not fit a %v wide card", p.PanelWidth, p.PanelHeight, p.Width)
	}
	if p.PanelCenterRatio < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "panel center ratio %v puts the gauge outside the panel", p.PanelCenterRatio)
	}
	if p.AvatarSize <= 0 || p.MaxCanvasHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "avatar size and max canvas height must be positive")
	}
	for _, g := range []Gauge{p.MainGauge, p.AvatarGauge} {
		if g.Radius <= 0 || g.NeedleLength <= 0 || g.PercentageFontSize <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "gauge radius, needle length and percentage font size must be positive")
		}
	}
	for _, fs := range []float64{p.HeaderFontSize, p.TextFontSize, p.FooterFontSize, p.OptionFontSize, p.PercentFontSize} {
		if fs <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "font sizes must be positive")
		}
	}
	if _, err := p.Theme.resolve(); err != nil {
		return err
	}
	return nil
}

// palette is a Theme with parsed colors.
type palette struct {
	background, panel, text, secondary, needle color.Color
	start, end                                 color.Color
	bars                                       []color.Color
}

func (t Theme) resolve() (palette, error) {
	var p palette
	fields := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"background", t.Background, &p.background},
		{"panel", t.Panel, &p.panel},
		{"text", t.Text, &p.text},
		{"secondary_text", t.SecondaryText, &p.secondary},
		{"needle", t.Needle, &p.needle},
		{"gradient_start", t.GradientStart, &p.start},
		{"gradient_end", t.GradientEnd, &p.end},
	}
	for _, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return palette{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "theme %s", f.name)
		}
		*f.dst = c
	}
	for i, hex := range t.Palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return palette{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "theme palette[%d]", i)
		}
		p.bars = append(p.bars, c)
	}
	return p, nil
}

// barColor picks the color for the option at index i of n. Configured
// palette entries are used by position; when the palette is shorter than the
// option list the whole list is spread along the gauge gradient instead.
func (p palette) barColor(i, n int) color.Color {
	if n <= len(p.bars) {
		return p.bars[i]
	}
	start, _ := colorful.MakeColor(p.start)
	end, _ := colorful.MakeColor(p.end)
	if n == 1 {
		return start
	}
	return start.BlendRgb(end, float64(i)/float64(n-1)).Clamped()
}
