package music

import "fmt"

// Note pairs a pitch with a rhythmic length. It is the final output unit of
// a scan and is never mutated after creation.
type Note struct {
	Pitch  Pitch  `json:"pitch"`
	Length Length `json:"length"`
}

func (n Note) String() string {
	return fmt.Sprintf("%s %s", n.Pitch, n.Length)
}
