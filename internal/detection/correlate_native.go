//go:build !gocv

package detection

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/sheet-omr/internal/imaging"
)

const flatEpsilon = 1e-9

func backendName() string {
	return "native"
}

func backendVersion() string {
	return ""
}

// correlate is the pure Go backend. Window sums come from integral images,
// so only the template dot product is computed per position; rows of the
// surface are split across goroutines.
func correlate(img, tmpl *image.Gray) (*Surface, error) {
	W, H := img.Rect.Dx(), img.Rect.Dy()
	w, h := tmpl.Rect.Dx(), tmpl.Rect.Dy()
	out := newSurface(H-h+1, W-w+1)

	// Zero-mean template.
	tp := make([]float64, w*h)
	for i, v := range packed(tmpl) {
		tp[i] = float64(v)
	}
	floats.AddConst(-stat.Mean(tp, nil), tp)
	tnorm := floats.Norm(tp, 2)
	if tnorm < flatEpsilon {
		return out, nil
	}

	pix := packed(img)
	fimg := make([]float64, len(pix))
	for i, v := range pix {
		fimg[i] = float64(v)
	}
	sums := imaging.NewSummedArea(pix, W, H)

	n := int64(w * h)
	parallel.Line(out.Rows, func(start, end int) {
		for r := start; r < end; r++ {
			for c := 0; c < out.Cols; c++ {
				s, s2 := sums.Box(r, c, w, h)
				// n·var, exact in integer arithmetic.
				nvar := n*s2 - s*s
				if nvar <= 0 {
					continue
				}

				var num float64
				for ty := 0; ty < h; ty++ {
					off := (r+ty)*W + c
					num += floats.Dot(tp[ty*w:(ty+1)*w], fimg[off:off+w])
				}

				wnorm := math.Sqrt(float64(nvar) / float64(n))
				out.Data[r*out.Cols+c] = clampScore(num / (wnorm * tnorm))
			}
		}
	})
	return out, nil
}
