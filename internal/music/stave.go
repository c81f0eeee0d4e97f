package music

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StaveLineCount is the number of lines on a stave.
const StaveLineCount = 5

// Stave holds the pixel rows of the five stave lines, top to bottom, and the
// mean gap between consecutive lines.
type Stave struct {
	Lines   [StaveLineCount]int `json:"lines"`
	Spacing float64             `json:"line_spacing"`
}

// NewStave builds a Stave from exactly five line rows in any order.
// The resulting spacing must be positive.
func NewStave(lines []int) (Stave, error) {
	if len(lines) != StaveLineCount {
		return Stave{}, fmt.Errorf("stave needs %d lines, got %d", StaveLineCount, len(lines))
	}
	var s Stave
	copy(s.Lines[:], lines)
	sort.Ints(s.Lines[:])
	s.Spacing = LineSpacing(s.Lines[:])
	if s.Spacing <= 0 {
		return Stave{}, fmt.Errorf("stave line spacing must be positive, got %g", s.Spacing)
	}
	return s, nil
}

// Top returns the row of the topmost line.
func (s Stave) Top() int {
	return s.Lines[0]
}

// LineSpacing returns the mean gap between consecutive lines after sorting
// them. Fewer than two lines have no spacing and yield 0. The input slice is
// not modified.
func LineSpacing(lines []int) float64 {
	if len(lines) < 2 {
		return 0
	}
	sorted := append([]int(nil), lines...)
	sort.Ints(sorted)

	gaps := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps[i-1] = float64(sorted[i] - sorted[i-1])
	}
	return stat.Mean(gaps, nil)
}
