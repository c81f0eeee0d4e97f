package detection

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/logger"
	"github.com/ironsheep/sheet-omr/internal/templates"
)

// DefaultMatchThreshold is the correlation score a position must exceed to
// count as a raw match.
const DefaultMatchThreshold = 0.55

// RawMatch is a response-surface position scoring above the threshold. Row
// and Col are the top-left corner of the template placement.
type RawMatch struct {
	Row   int
	Col   int
	Score float64
}

// Detection is one matched symbol: a cluster of raw matches reduced to the
// centre of the template in page pixels.
type Detection struct {
	Template *templates.Template
	Row      float64
	Col      float64
	Members  int
	Score    float64
}

// Matcher finds occurrences of a template on a binarized page.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher using DefaultMatchThreshold.
func NewMatcher() Matcher {
	return Matcher{Threshold: DefaultMatchThreshold}
}

// RawMatches lists every surface position whose score is strictly above the
// threshold, in row-major order.
func (m Matcher) RawMatches(s *Surface) []RawMatch {
	var out []RawMatch
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			if v := s.At(r, c); v > m.Threshold {
				out = append(out, RawMatch{Row: r, Col: c, Score: v})
			}
		}
	}
	return out
}

// overlaps reports whether w x h boxes anchored at a and b intersect on both
// axes.
func overlaps(a, b RawMatch, w, h int) bool {
	return a.Col < b.Col+w && b.Col < a.Col+w &&
		a.Row < b.Row+h && b.Row < a.Row+h
}

// Cluster groups raw matches that belong to the same symbol.
//
// Matches are visited in order. Each joins the first cluster whose seed, the
// match that opened it, overlaps it; otherwise it opens a new cluster. Only
// the seed is compared, so a chain of matches drifting away from the seed
// can split into several clusters.
func Cluster(matches []RawMatch, w, h int) [][]RawMatch {
	var clusters [][]RawMatch
	for _, m := range matches {
		joined := false
		for i := range clusters {
			if overlaps(clusters[i][0], m, w, h) {
				clusters[i] = append(clusters[i], m)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, []RawMatch{m})
		}
	}
	return clusters
}

// Match correlates tmpl against img and returns one Detection per cluster of
// raw matches. Each detection is centred at the cluster's mean top-left
// position plus half the template size, rounded down to whole pixels.
func (m Matcher) Match(img *image.Gray, tmpl *templates.Template) ([]Detection, error) {
	tg := tmpl.Gray()
	surface, err := Correlate(img, tg)
	if err != nil {
		return nil, err
	}

	w, h := tg.Rect.Dx(), tg.Rect.Dy()
	raw := m.RawMatches(surface)
	clusters := Cluster(raw, w, h)

	detections := make([]Detection, 0, len(clusters))
	for _, cl := range clusters {
		var sumR, sumC, best float64
		best = -1
		for _, rm := range cl {
			sumR += float64(rm.Row)
			sumC += float64(rm.Col)
			if rm.Score > best {
				best = rm.Score
			}
		}
		n := float64(len(cl))
		detections = append(detections, Detection{
			Template: tmpl,
			Row:      sumR/n + float64(h/2),
			Col:      sumC/n + float64(w/2),
			Members:  len(cl),
			Score:    best,
		})
	}

	peak, _, _ := surface.Max()
	logger.WithFields(logrus.Fields{
		"template":    tmpl.Name,
		"peak_score":  peak,
		"raw_matches": len(raw),
		"detections":  len(detections),
	}).Debug("Template matched")

	return detections, nil
}
