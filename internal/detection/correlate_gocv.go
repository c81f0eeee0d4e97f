//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

func backendName() string {
	return "opencv"
}

func backendVersion() string {
	return fmt.Sprintf("gocv %s, OpenCV %s", gocv.Version(), gocv.OpenCVVersion())
}

// correlate delegates to OpenCV's TM_CCOEFF_NORMED matcher.
func correlate(img, tmpl *image.Gray) (*Surface, error) {
	src, err := gocv.NewMatFromBytes(img.Rect.Dy(), img.Rect.Dx(), gocv.MatTypeCV8UC1, packed(img))
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to Mat: %w", err)
	}
	defer src.Close()

	t, err := gocv.NewMatFromBytes(tmpl.Rect.Dy(), tmpl.Rect.Dx(), gocv.MatTypeCV8UC1, packed(tmpl))
	if err != nil {
		return nil, fmt.Errorf("failed to convert template to Mat: %w", err)
	}
	defer t.Close()

	res := gocv.NewMat()
	defer res.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, t, &res, gocv.TmCcoeffNormed, mask)

	out := newSurface(res.Rows(), res.Cols())
	for r := 0; r < out.Rows; r++ {
		for c := 0; c < out.Cols; c++ {
			out.Data[r*out.Cols+c] = clampScore(float64(res.GetFloatAt(r, c)))
		}
	}
	return out, nil
}
