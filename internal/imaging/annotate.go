package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mark is a detection marker: a ring centred on a matched symbol.
type Mark struct {
	Row    float64
	Col    float64
	Radius float64
	Label  string
}

// AnnotationStyle controls how stave lines and marks are drawn.
type AnnotationStyle struct {
	// Color is a hex colour such as "#FF0000" or "#F00".
	Color     string
	Thickness int
	// Labels draws each mark's Label to the right of its ring.
	Labels bool
}

// DefaultAnnotationStyle draws red at thickness 3 without labels.
func DefaultAnnotationStyle() AnnotationStyle {
	return AnnotationStyle{Color: "#FF0000", Thickness: 3}
}

// ParseColor parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
func ParseColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Annotate draws the stave lines and a ring per mark onto a colour copy of
// src. The copy is anchored at the origin; src is not modified.
//
// Each line spans the full width and is Thickness rows tall, centred on its
// row. An unparseable colour falls back to red.
func Annotate(src image.Image, lines []int, marks []Mark, style AnnotationStyle) *image.RGBA {
	b := src.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(result, result.Bounds(), src, b.Min, draw.Src)

	c, err := ParseColor(style.Color)
	if err != nil {
		c = color.RGBA{255, 0, 0, 255}
	}
	thickness := style.Thickness
	if thickness < 1 {
		thickness = 1
	}

	for _, y := range lines {
		drawHLine(result, y, thickness, c)
	}
	for _, m := range marks {
		drawRing(result, m.Col, m.Row, m.Radius, thickness, c)
		if style.Labels && m.Label != "" {
			drawLabel(result, m, c)
		}
	}
	return result
}

func drawHLine(img *image.RGBA, y, thickness int, c color.RGBA) {
	bounds := img.Bounds()
	top := y - thickness/2
	for row := top; row < top+thickness; row++ {
		if row < bounds.Min.Y || row >= bounds.Max.Y {
			continue
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, row, c)
		}
	}
}

// drawRing colours every pixel whose distance from (cx, cy) is within
// thickness/2 of radius.
func drawRing(img *image.RGBA, cx, cy, radius float64, thickness int, c color.RGBA) {
	bounds := img.Bounds()
	half := float64(thickness) / 2
	outer := radius + half

	x0 := int(math.Floor(cx - outer))
	x1 := int(math.Ceil(cx + outer))
	y0 := int(math.Floor(cy - outer))
	y1 := int(math.Ceil(cy + outer))

	for y := y0; y <= y1; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := x0; x <= x1; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if math.Abs(d-radius) <= half {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func drawLabel(img *image.RGBA, m Mark, c color.RGBA) {
	face := basicfont.Face7x13
	x := int(math.Round(m.Col + m.Radius + 4))
	y := int(math.Round(m.Row)) + face.Ascent/2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(m.Label)
}
