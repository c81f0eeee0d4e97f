package detection

import (
	"fmt"
	"image"
	"math"
)

// Surface is a template-matching response map. Entry (row, col) scores the
// template placed with its top-left corner at that pixel of the page.
type Surface struct {
	Rows int
	Cols int
	Data []float64
}

func newSurface(rows, cols int) *Surface {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Surface{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the score at (row, col).
func (s *Surface) At(row, col int) float64 {
	return s.Data[row*s.Cols+col]
}

// Max returns the best score and its position. An empty surface returns
// (-1, -1, -1).
func (s *Surface) Max() (score float64, row, col int) {
	score, row, col = -1, -1, -1
	for i, v := range s.Data {
		if row < 0 || v > score {
			score = v
			row, col = i/s.Cols, i%s.Cols
		}
	}
	return score, row, col
}

// Correlate scores tmpl against every position of img with the normalized
// correlation coefficient:
//
//	R(r, c) = Σ T'·I' / sqrt(Σ T'² · Σ I'²)
//
// where T' and I' are the template and the page window with their means
// removed. A flat window or a flat template scores 0, and scores are clamped
// to [-1, 1]. The surface is (H-h+1) x (W-w+1); it is empty when the template
// is larger than the page.
func Correlate(img, tmpl *image.Gray) (*Surface, error) {
	if img == nil || tmpl == nil {
		return nil, fmt.Errorf("correlate: nil image")
	}
	if tmpl.Rect.Dx() == 0 || tmpl.Rect.Dy() == 0 {
		return nil, fmt.Errorf("correlate: empty template")
	}
	if tmpl.Rect.Dx() > img.Rect.Dx() || tmpl.Rect.Dy() > img.Rect.Dy() {
		return newSurface(0, 0), nil
	}
	return correlate(img, tmpl)
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

// packed returns the pixels of img row-major without stride padding.
func packed(img *image.Gray) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w && len(img.Pix) == w*h {
		return img.Pix
	}
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return out
}
