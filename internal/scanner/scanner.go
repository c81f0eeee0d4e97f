// Package scanner runs the full recognition pipeline: it reads a page,
// finds its stave and note heads, and returns the notes they spell.
package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/config"
	"github.com/ironsheep/sheet-omr/internal/detection"
	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
	"github.com/ironsheep/sheet-omr/internal/imaging"
	"github.com/ironsheep/sheet-omr/internal/logger"
	"github.com/ironsheep/sheet-omr/internal/music"
	"github.com/ironsheep/sheet-omr/internal/templates"
)

// Options tunes a Scanner.
type Options struct {
	Preprocess      imaging.PreprocessOptions
	MatchThreshold  float64
	PitchCorrection float64

	// NoteOrder is config.NoteOrderRow (top of page first) or
	// config.NoteOrderColumn (left to right).
	NoteOrder string

	// StrictPitchRange aborts a scan on the first detection whose pitch
	// falls outside A0..C8. Otherwise such detections are dropped and
	// counted in Result.Skipped.
	StrictPitchRange bool

	Annotate   bool
	Annotation imaging.AnnotationStyle
}

// DefaultOptions returns the reference tuning: 21/4/3 preprocessing,
// threshold 0.55, correction 0.3, row order, annotation on.
func DefaultOptions() Options {
	return Options{
		Preprocess:      imaging.DefaultPreprocessOptions(),
		MatchThreshold:  detection.DefaultMatchThreshold,
		PitchCorrection: music.DefaultPitchCorrection,
		NoteOrder:       config.NoteOrderRow,
		Annotate:        true,
		Annotation:      imaging.DefaultAnnotationStyle(),
	}
}

// OptionsFromConfig maps configuration onto scanner options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Preprocess: imaging.PreprocessOptions{
			BlockSize:  cfg.ThresholdBlockSize,
			Offset:     cfg.ThresholdOffset,
			KernelSize: cfg.MorphKernelSize,
		},
		MatchThreshold:   cfg.MatchThreshold,
		PitchCorrection:  cfg.PitchCorrection,
		NoteOrder:        cfg.NoteOrder,
		StrictPitchRange: cfg.StrictPitchRange,
		Annotate:         cfg.Annotate,
		Annotation: imaging.AnnotationStyle{
			Color:     cfg.AnnotationColor,
			Thickness: cfg.AnnotationThickness,
			Labels:    cfg.AnnotationLabels,
		},
	}
}

// Placement is a recognised note together with where it was found.
type Placement struct {
	Pitch    music.Pitch  `json:"pitch"`
	Length   music.Length `json:"length"`
	Row      float64      `json:"row"`
	Col      float64      `json:"col"`
	Template string       `json:"template"`
	Score    float64      `json:"score"`

	radius float64
}

// Note returns the placement's pitch and length.
func (p Placement) Note() music.Note {
	return music.Note{Pitch: p.Pitch, Length: p.Length}
}

// Result is the outcome of a scan.
type Result struct {
	Notes      []music.Note `json:"notes"`
	Placements []Placement  `json:"placements"`
	Stave      music.Stave  `json:"stave"`

	// Skipped counts detections dropped because their pitch fell outside
	// A0..C8.
	Skipped int `json:"skipped"`

	// AnnotatedPath is set by Scan when the annotated page was written back.
	AnnotatedPath string `json:"annotated_path,omitempty"`

	Annotated image.Image `json:"-"`
}

// Scanner runs the recognition pipeline. It holds no per-scan state, so one
// Scanner may serve concurrent scans.
type Scanner struct {
	library *templates.Library
	opts    Options
}

// New returns a Scanner over library. The correlation backend is initialised
// here if that has not happened yet.
func New(library *templates.Library, opts Options) *Scanner {
	detection.InitBackend()
	return &Scanner{library: library, opts: opts}
}

// Options returns the scanner's options.
func (s *Scanner) Options() Options {
	return s.opts
}

// With returns a scanner sharing s's template library but using opts.
func (s *Scanner) With(opts Options) *Scanner {
	return &Scanner{library: s.library, opts: opts}
}

// Scan recognises the notes on the page at imagePath.
//
// When annotation is enabled the file at imagePath is overwritten with the
// annotated page. Failing to write it is logged and never fails the scan.
func (s *Scanner) Scan(ctx context.Context, imagePath string) (*Result, error) {
	img, err := imaging.Load(imagePath)
	if err != nil {
		return nil, err
	}

	res, err := s.ScanImage(ctx, img)
	if err != nil {
		return nil, err
	}

	if res.Annotated != nil {
		if err := imaging.Save(res.Annotated, imagePath); err != nil {
			logger.WithError(err).WithField("path", imagePath).Warn("Failed to write annotated image")
		} else {
			res.AnnotatedPath = imagePath
		}
	}
	return res, nil
}

// ScanImage runs the pipeline on an in-memory page. Nothing is written; the
// annotated copy, if enabled, is returned in Result.Annotated.
func (s *Scanner) ScanImage(ctx context.Context, img image.Image) (*Result, error) {
	bin, err := imaging.Preprocess(img, s.opts.Preprocess)
	if err != nil {
		return nil, err
	}

	stave, err := detection.DetectStave(bin)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"lines":   stave.Lines,
		"spacing": stave.Spacing,
	}).Debug("Stave detected")

	all, err := s.library.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	matcher := detection.Matcher{Threshold: s.opts.MatchThreshold}
	mapper := music.Mapper{Correction: s.opts.PitchCorrection}
	res := &Result{Stave: stave}

	for _, tmpl := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prepared, err := tmpl.Prepare(stave.Spacing, s.opts.Preprocess)
		if err != nil {
			return nil, apperrors.NewTemplateLoadError(fmt.Sprintf("cannot prepare template %s", tmpl.Name), err)
		}
		logger.WithFields(logrus.Fields{
			"template":    tmpl.Name,
			"source_size": fmt.Sprintf("%dx%d", tmpl.Width(), tmpl.Height()),
			"scaled_size": fmt.Sprintf("%dx%d", prepared.Width(), prepared.Height()),
		}).Debug("Template resized")

		detections, err := matcher.Match(bin, prepared)
		if err != nil {
			return nil, err
		}

		for _, d := range detections {
			pitch, err := mapper.MapToPitch(d.Row, stave)
			if err != nil {
				if s.opts.StrictPitchRange || !stderrors.Is(err, apperrors.ErrPitchOutOfRange) {
					return nil, err
				}
				res.Skipped++
				logger.WithError(err).WithFields(logrus.Fields{
					"template": tmpl.Name,
					"row":      d.Row,
					"col":      d.Col,
				}).Warn("Dropping detection outside the pitch range")
				continue
			}
			res.Placements = append(res.Placements, Placement{
				Pitch:    pitch,
				Length:   tmpl.Length,
				Row:      d.Row,
				Col:      d.Col,
				Template: tmpl.Name,
				Score:    d.Score,
				radius:   math.Max(float64(prepared.Width()), float64(prepared.Height())) / 2,
			})
		}
	}

	orderPlacements(res.Placements, s.opts.NoteOrder)
	res.Notes = make([]music.Note, len(res.Placements))
	for i, p := range res.Placements {
		res.Notes[i] = p.Note()
	}

	if s.opts.Annotate {
		res.Annotated = annotate(img, res, s.opts.Annotation)
	}

	logger.WithFields(logrus.Fields{
		"notes":   len(res.Notes),
		"skipped": res.Skipped,
	}).Info("Scan complete")
	return res, nil
}

// orderPlacements sorts by row (top first) with ties broken by column, or
// by column then row for column order.
func orderPlacements(ps []Placement, order string) {
	if order == config.NoteOrderColumn {
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Col != ps[j].Col {
				return ps[i].Col < ps[j].Col
			}
			return ps[i].Row < ps[j].Row
		})
		return
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Row != ps[j].Row {
			return ps[i].Row < ps[j].Row
		}
		return ps[i].Col < ps[j].Col
	})
}

func annotate(img image.Image, res *Result, style imaging.AnnotationStyle) image.Image {
	marks := make([]imaging.Mark, len(res.Placements))
	for i, p := range res.Placements {
		marks[i] = imaging.Mark{Row: p.Row, Col: p.Col, Radius: p.radius, Label: p.Pitch.String()}
	}
	return imaging.Annotate(img, res.Stave.Lines[:], marks, style)
}
