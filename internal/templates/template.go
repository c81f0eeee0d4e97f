package templates

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	sheetimg "github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/music"
)

// Template is a note head reference image tagged with the rhythmic length
// it stands for. Templates are values: Resize and Binarize return new ones.
type Template struct {
	Name   string
	Length music.Length
	Image  image.Image
}

// Width returns the template image width in pixels.
func (t *Template) Width() int {
	return t.Image.Bounds().Dx()
}

// Height returns the template image height in pixels.
func (t *Template) Height() int {
	return t.Image.Bounds().Dy()
}

// Resize scales the template so its height matches spacing. Both axes use
// the same factor, spacing / height, and each side is rounded to the nearest
// pixel with a minimum of 1. Lanczos resampling keeps edges smooth.
func (t *Template) Resize(spacing float64) (*Template, error) {
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("template %s: invalid target spacing %g", t.Name, spacing)
	}
	h := t.Height()
	if h == 0 || t.Width() == 0 {
		return nil, fmt.Errorf("template %s: empty image", t.Name)
	}

	f := spacing / float64(h)
	nw := scaledSide(t.Width(), f)
	nh := scaledSide(h, f)

	return &Template{
		Name:   t.Name,
		Length: t.Length,
		Image:  imaging.Resize(t.Image, nw, nh, imaging.Lanczos),
	}, nil
}

func scaledSide(n int, f float64) int {
	s := int(math.Round(float64(n) * f))
	if s < 1 {
		return 1
	}
	return s
}

// Binarize re-applies the page preprocessor so the template and the page
// are compared in the same representation.
func (t *Template) Binarize(opts sheetimg.PreprocessOptions) (*Template, error) {
	bin, err := sheetimg.Preprocess(t.Image, opts)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", t.Name, err)
	}
	return &Template{Name: t.Name, Length: t.Length, Image: bin}, nil
}

// Prepare resizes the template to spacing and binarizes the result.
func (t *Template) Prepare(spacing float64, opts sheetimg.PreprocessOptions) (*Template, error) {
	resized, err := t.Resize(spacing)
	if err != nil {
		return nil, err
	}
	return resized.Binarize(opts)
}

// Gray returns the template image as *image.Gray, converting if needed.
func (t *Template) Gray() *image.Gray {
	if g, ok := t.Image.(*image.Gray); ok {
		return g
	}
	return sheetimg.ToGray(t.Image)
}
