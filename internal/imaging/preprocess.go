package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"

	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
)

// Pixel values of a binarized page.
const (
	Ink        uint8 = 0
	Background uint8 = 255
)

// PreprocessOptions controls binarization.
type PreprocessOptions struct {
	// BlockSize is the side of the square window whose mean is the local
	// threshold. Must be odd and at least 3.
	BlockSize int

	// Offset is subtracted from the local mean. A pixel is ink when it is
	// strictly darker than mean - Offset.
	Offset int

	// KernelSize is the diameter of the elliptical structuring element used
	// for the opening. Must be odd; 1 disables the opening.
	KernelSize int
}

// DefaultPreprocessOptions returns the 21/4/3 settings used for printed scores.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{BlockSize: 21, Offset: 4, KernelSize: 3}
}

// Validate checks the option ranges.
func (o PreprocessOptions) Validate() error {
	if o.BlockSize < 3 || o.BlockSize%2 == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("block size must be odd and >= 3, got %d", o.BlockSize), nil)
	}
	if o.KernelSize < 1 || o.KernelSize%2 == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("kernel size must be odd and >= 1, got %d", o.KernelSize), nil)
	}
	return nil
}

// Preprocess binarizes img into a new *image.Gray whose pixels are either Ink
// or Background. The input is never modified and the result's bounds start
// at the origin.
//
// The steps are:
//
//  1. Luma grayscale.
//  2. Adaptive threshold against the BlockSize x BlockSize local mean, with
//     borders extended from the nearest edge pixel.
//  3. Morphological opening of the ink with an elliptical element, which
//     removes speckle smaller than the element.
//  4. Polarity: ink is 0, background is 255.
//
// A nil or zero-area image fails with InvalidImage.
func Preprocess(img image.Image, opts PreprocessOptions) (*image.Gray, error) {
	if err := checkArea(img); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	gray := ToGray(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()

	// Local sums come from the edge-extended page, so the threshold compares
	// exact integers: gray*area < sum - offset*area.
	r := opts.BlockSize / 2
	padded := clone.Pad(gray, r, r, clone.EdgeExtend)
	pw, ph := w+2*r, h+2*r
	ppix := make([]uint8, pw*ph)
	for y := 0; y < ph; y++ {
		row := padded.Pix[y*padded.Stride:]
		for x := 0; x < pw; x++ {
			ppix[y*pw+x] = row[x*4]
		}
	}
	sums := NewSummedArea(ppix, pw, ph)
	area := int64(opts.BlockSize * opts.BlockSize)
	offset := int64(opts.Offset) * area

	mask := newMask(w, h)
	for y := 0; y < h; y++ {
		grow := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			sum, _ := sums.Box(y, x, opts.BlockSize, opts.BlockSize)
			if int64(grow[x])*area < sum-offset {
				mask.pix[y*w+x] = true
			}
		}
	}

	mask = mask.open(ellipseElement(opts.KernelSize))

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, ink := range mask.pix {
		if ink {
			out.Pix[i] = Ink
		} else {
			out.Pix[i] = Background
		}
	}
	return out, nil
}

// ToGray converts img to an 8-bit luma image anchored at the origin.
func ToGray(img image.Image) *image.Gray {
	g := imaging.Grayscale(img)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4]
		}
	}
	return out
}
