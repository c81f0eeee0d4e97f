package scanner

import (
	"image"

	"github.com/ironsheep/sheet-omr/internal/detection"
	"github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/music"
)

// Preprocess is the reduced, path-only mode: it binarizes the page at
// imagePath, overwrites the file with the result and returns the path.
// No stave or pitch analysis is done.
func (s *Scanner) Preprocess(imagePath string) (string, error) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return "", err
	}
	bin, err := s.PreprocessImage(img)
	if err != nil {
		return "", err
	}
	if err := imaging.Save(bin, imagePath); err != nil {
		return "", err
	}
	return imagePath, nil
}

// PreprocessImage binarizes an in-memory page with the scanner's options.
func (s *Scanner) PreprocessImage(img image.Image) (*image.Gray, error) {
	return imaging.Preprocess(img, s.opts.Preprocess)
}

// DetectStave binarizes the page at imagePath and locates its stave without
// matching any symbols. The file is not modified.
func (s *Scanner) DetectStave(imagePath string) (music.Stave, error) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return music.Stave{}, err
	}
	bin, err := s.PreprocessImage(img)
	if err != nil {
		return music.Stave{}, err
	}
	return detection.DetectStave(bin)
}
