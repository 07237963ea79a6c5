// Package chart renders the two-panel revenue and valuation figure.
package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"

	"revcompare/internal/config"
	"revcompare/internal/models"
)

// Style is the figure styling applied by Render. It is passed explicitly;
// rendering never touches package-level plot defaults.
type Style struct {
	Width  vg.Length
	Height vg.Length

	// Font is the base face; sizes and weights are derived from it.
	Font      font.Font
	TitleSize vg.Length
	LabelSize vg.Length
	TickSize  vg.Length

	Palette   map[string]color.Color
	GridColor color.Color
	Caption   string
}

// NewStyle builds a Style from chart configuration and the entity colours.
func NewStyle(cfg config.ChartConfig, entities []models.Entity) (Style, error) {
	palette := make(map[string]color.Color, len(entities))
	for _, e := range entities {
		c, err := ParseHexColor(e.Color)
		if err != nil {
			return Style{}, fmt.Errorf("colour for %s: %w", e.Name, err)
		}
		palette[e.Name] = c
	}

	variant := cfg.FontVariant
	if variant == "" {
		variant = "Sans"
	}

	return Style{
		Width:     vg.Length(cfg.Width) * vg.Inch,
		Height:    vg.Length(cfg.Height) * vg.Inch,
		Font:      font.Font{Typeface: "Liberation", Variant: font.Variant(variant)},
		TitleSize: vg.Points(cfg.TitleSize),
		LabelSize: vg.Points(cfg.LabelSize),
		TickSize:  vg.Points(cfg.TickSize),
		Palette:   palette,
		GridColor: color.NRGBA{R: 176, G: 176, B: 176, A: 178},
		Caption:   cfg.Caption,
	}, nil
}

// ColorFor returns the entity colour, falling back to black.
func (s Style) ColorFor(entity string) color.Color {
	if c, ok := s.Palette[entity]; ok {
		return c
	}
	return color.Black
}

func (s Style) face(size vg.Length, weight xfont.Weight, style xfont.Style) font.Font {
	f := s.Font
	f.Size = size
	f.Weight = weight
	f.Style = style
	return f
}

func (s Style) bold(size vg.Length) font.Font {
	return s.face(size, xfont.WeightBold, xfont.StyleNormal)
}

func (s Style) regular(size vg.Length) font.Font {
	return s.face(size, xfont.WeightNormal, xfont.StyleNormal)
}

// ParseHexColor parses a #RRGGBB colour.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
