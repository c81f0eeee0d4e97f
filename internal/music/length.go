package music

import (
	"fmt"
	"strings"
)

// Length is the rhythmic value carried by a note head template.
type Length int

const (
	Breve Length = iota
	Semibreve
	Minim
	Crotchet
	Quaver
	Semiquaver
	Demisemiquaver
	Hemidemisemiquaver
)

var lengthNames = [...]string{
	"breve",
	"semibreve",
	"minim",
	"crotchet",
	"quaver",
	"semiquaver",
	"demisemiquaver",
	"hemidemisemiquaver",
}

// Valid reports whether l is one of the eight defined lengths.
func (l Length) Valid() bool {
	return l >= Breve && l <= Hemidemisemiquaver
}

func (l Length) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Length(%d)", int(l))
	}
	return lengthNames[l]
}

// ParseLength parses a length name, case-insensitively.
func ParseLength(s string) (Length, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range lengthNames {
		if n == name {
			return Length(i), nil
		}
	}
	return 0, fmt.Errorf("unknown note length: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Length) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid note length: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Length) UnmarshalText(text []byte) error {
	v, err := ParseLength(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
