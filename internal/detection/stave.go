package detection

import (
	"fmt"
	"image"
	"sort"

	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
	"github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/music"
)

// Peak is a local maximum of a row histogram.
type Peak struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

// BlacksPerRow counts the ink pixels of each row of a binarized page.
// The result has one entry per row, top to bottom.
func BlacksPerRow(img *image.Gray) []int {
	b := img.Bounds()
	counts := make([]int, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()]
		n := 0
		for _, v := range row {
			if v == imaging.Ink {
				n++
			}
		}
		counts[y-b.Min.Y] = n
	}
	return counts
}

// FindPeaks returns the local maxima of data in index order.
//
// An interior index i is a peak when data[i-1] < data[i] > data[i+1]; the
// first and last index never are. Short inputs are special-cased: an empty
// slice has no peaks, a single element is its own peak, and of two elements
// the larger wins with ties going to the first.
func FindPeaks(data []int) []Peak {
	switch len(data) {
	case 0:
		return nil
	case 1:
		return []Peak{{Index: 0, Count: data[0]}}
	case 2:
		if data[1] > data[0] {
			return []Peak{{Index: 1, Count: data[1]}}
		}
		return []Peak{{Index: 0, Count: data[0]}}
	}

	var peaks []Peak
	for i := 1; i < len(data)-1; i++ {
		if data[i-1] < data[i] && data[i] > data[i+1] {
			peaks = append(peaks, Peak{Index: i, Count: data[i]})
		}
	}
	return peaks
}

// DetectStave finds the five stave lines of a binarized page.
//
// Peaks of the ink-per-row histogram are ranked by count, the five darkest
// are kept and re-sorted top to bottom. Equal counts keep row order. Fewer
// than five peaks is an InsufficientStaveData error.
func DetectStave(img *image.Gray) (music.Stave, error) {
	peaks := FindPeaks(BlacksPerRow(img))
	if len(peaks) < music.StaveLineCount {
		return music.Stave{}, apperrors.NewInsufficientStaveDataError(
			fmt.Sprintf("found %d row peaks, need %d", len(peaks), music.StaveLineCount), nil)
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Count > peaks[j].Count
	})

	lines := make([]int, music.StaveLineCount)
	for i := range lines {
		lines[i] = peaks[i].Index
	}

	stave, err := music.NewStave(lines)
	if err != nil {
		return music.Stave{}, apperrors.NewInsufficientStaveDataError("degenerate stave geometry", err)
	}
	return stave, nil
}
