package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// mask is a binary ink map, row-major.
type mask struct {
	w, h int
	pix  []bool
}

func newMask(w, h int) *mask {
	return &mask{w: w, h: h, pix: make([]bool, w*h)}
}

// ellipseElement returns the offsets of an elliptical structuring element
// of the given odd diameter. Diameter 3 is the plus-shaped cross.
func ellipseElement(size int) []image.Point {
	r := size / 2
	if r == 0 {
		return []image.Point{{X: 0, Y: 0}}
	}
	var pts []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				pts = append(pts, image.Point{X: dx, Y: dy})
			}
		}
	}
	return pts
}

// erode keeps a pixel only when every in-image neighbour under the element
// is ink. Neighbours outside the image do not count against it.
func (m *mask) erode(elem []image.Point) *mask {
	out := newMask(m.w, m.h)
	parallel.Line(m.h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.w; x++ {
				if !m.pix[y*m.w+x] {
					continue
				}
				keep := true
				for _, p := range elem {
					nx, ny := x+p.X, y+p.Y
					if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
						continue
					}
					if !m.pix[ny*m.w+nx] {
						keep = false
						break
					}
				}
				out.pix[y*m.w+x] = keep
			}
		}
	})
	return out
}

// dilate marks a pixel when any in-image neighbour under the element is ink.
func (m *mask) dilate(elem []image.Point) *mask {
	out := newMask(m.w, m.h)
	parallel.Line(m.h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < m.w; x++ {
				for _, p := range elem {
					nx, ny := x+p.X, y+p.Y
					if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
						continue
					}
					if m.pix[ny*m.w+nx] {
						out.pix[y*m.w+x] = true
						break
					}
				}
			}
		}
	})
	return out
}

// open is erosion followed by dilation.
func (m *mask) open(elem []image.Point) *mask {
	return m.erode(elem).dilate(elem)
}
