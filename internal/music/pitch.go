package music

import (
	"fmt"
	"strings"

	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
)

// Pitch is a scale degree on the stave ladder, A0 (0) through C8 (58).
//
// Ordinals advance one letter per step, so a full line-to-line gap on the
// stave is two steps. Names follow the letter order A..G with the octave
// digit bumped at every A (A0, B0, C0, ..., G0, A1, ...).
type Pitch int

const (
	A0 Pitch = iota
	B0
	C0
	D0
	E0
	F0
	G0
	A1
	B1
	C1
	D1
	E1
	F1
	G1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	A8
	B8
	C8
)

// MinPitch and MaxPitch bound the representable ladder.
const (
	MinPitch = A0
	MaxPitch = C8
)

const letters = "ABCDEFG"

// Valid reports whether p lies within [MinPitch, MaxPitch].
func (p Pitch) Valid() bool {
	return p >= MinPitch && p <= MaxPitch
}

// String returns the pitch name, e.g. "F5".
func (p Pitch) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Pitch(%d)", int(p))
	}
	return fmt.Sprintf("%c%d", letters[int(p)%7], int(p)/7)
}

// Offset returns the pitch n scale steps above p (below for negative n).
// A result outside [MinPitch, MaxPitch] is a PitchOutOfRange error.
func (p Pitch) Offset(n int) (Pitch, error) {
	q := Pitch(int(p) + n)
	if !q.Valid() {
		return 0, apperrors.NewPitchOutOfRangeError(
			fmt.Sprintf("ordinal %d (%s%+d) outside %s..%s", int(q), p, n, MinPitch, MaxPitch), nil)
	}
	return q, nil
}

// ParsePitch parses a pitch name such as "F5" or "c8".
func ParsePitch(s string) (Pitch, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid pitch name: %q", s)
	}
	letter := strings.IndexByte(letters, s[0])
	if letter < 0 || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("invalid pitch name: %q", s)
	}
	p := Pitch(int(s[1]-'0')*7 + letter)
	if !p.Valid() {
		return 0, apperrors.NewPitchOutOfRangeError(fmt.Sprintf("pitch %q outside %s..%s", s, MinPitch, MaxPitch), nil)
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Pitch) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, apperrors.NewPitchOutOfRangeError(fmt.Sprintf("ordinal %d", int(p)), nil)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pitch) UnmarshalText(text []byte) error {
	v, err := ParsePitch(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
