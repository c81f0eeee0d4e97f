package imaging

// SummedArea holds summed-area tables of 8-bit pixels and of their squares.
// Both are (w+1) x (h+1) with a zero first row and column, so any box sum is
// four lookups and exact in integer arithmetic.
type SummedArea struct {
	stride int
	sum    []int64
	sq     []int64
}

// NewSummedArea builds the tables for a w x h row-major pixel buffer.
func NewSummedArea(pix []uint8, w, h int) *SummedArea {
	stride := w + 1
	t := &SummedArea{
		stride: stride,
		sum:    make([]int64, stride*(h+1)),
		sq:     make([]int64, stride*(h+1)),
	}
	for y := 0; y < h; y++ {
		var rs, rq int64
		for x := 0; x < w; x++ {
			v := int64(pix[y*w+x])
			rs += v
			rq += v * v
			t.sum[(y+1)*stride+x+1] = t.sum[y*stride+x+1] + rs
			t.sq[(y+1)*stride+x+1] = t.sq[y*stride+x+1] + rq
		}
	}
	return t
}

// Box returns the sum of the pixels and of their squares over the w x h box
// whose top-left corner is (row, col).
func (t *SummedArea) Box(row, col, w, h int) (sum, sq int64) {
	return box(t.sum, t.stride, row, col, w, h), box(t.sq, t.stride, row, col, w, h)
}

func box(table []int64, stride, r, c, w, h int) int64 {
	return table[(r+h)*stride+c+w] - table[r*stride+c+w] - table[(r+h)*stride+c] + table[r*stride+c]
}
