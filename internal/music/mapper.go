package music

import (
	"fmt"
	"math"
)

// DefaultPitchCorrection is the fractional-pixel bias added to a detection
// row before it is quantised to a scale step.
const DefaultPitchCorrection = 0.3

// Reference is the pitch anchored to the topmost stave line.
const Reference = F5

// Mapper converts a vertical pixel position on a stave into a Pitch.
type Mapper struct {
	Correction float64
}

// NewMapper returns a Mapper using DefaultPitchCorrection.
func NewMapper() Mapper {
	return Mapper{Correction: DefaultPitchCorrection}
}

// MapToPitch maps row (a detection centre, in source pixels) to a pitch.
//
// The top stave line is F5 and every half line spacing is one scale step:
//
//	steps = roundHalfEven((stave.Top() - row + Correction) * 2 / spacing)
//
// Rows above the top line give higher pitches. The spacing is recomputed from
// stave.Lines. A result outside A0..C8 is a PitchOutOfRange error.
func (m Mapper) MapToPitch(row float64, stave Stave) (Pitch, error) {
	spacing := LineSpacing(stave.Lines[:])
	if spacing <= 0 {
		return 0, fmt.Errorf("cannot map pitch: stave spacing is %g", spacing)
	}
	steps := math.RoundToEven((float64(stave.Top()) - row + m.Correction) * 2 / spacing)
	return Reference.Offset(int(steps))
}
