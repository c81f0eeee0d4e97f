package detection

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/ironsheep/sheet-omr/internal/music"
	"github.com/ironsheep/sheet-omr/internal/templates"
)

// headImage draws a filled ellipse filling a width x height box.
func headImage(width, height int) *image.Gray {
	img := blankPage(width, height)
	cx, cy := float64(width-1)/2, float64(height-1)/2
	a, b := float64(width)/2-1, float64(height)/2-1
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := (float64(x)-cx)/a, (float64(y)-cy)/b
			if dx*dx+dy*dy <= 1 {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

// paste copies src into dst with its top-left corner at (col, row).
func paste(dst, src *image.Gray, col, row int) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetGray(col+x, row+y, src.GrayAt(b.Min.X+x, b.Min.Y+y))
		}
	}
}

func TestCorrelate_PerfectMatch(t *testing.T) {
	head := headImage(12, 10)
	page := blankPage(60, 40)
	paste(page, head, 20, 15)

	s, err := Correlate(page, head)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if s.Rows != 31 || s.Cols != 49 {
		t.Fatalf("surface size: got %dx%d, want 31x49", s.Rows, s.Cols)
	}

	score, row, col := s.Max()
	if row != 15 || col != 20 {
		t.Errorf("best position: got (%d,%d), want (15,20)", row, col)
	}
	if score < 0.999 || score > 1 {
		t.Errorf("best score: got %g, want ~1", score)
	}

	// A window of plain background has no variance.
	if v := s.At(0, 0); v != 0 {
		t.Errorf("flat window: got %g, want 0", v)
	}

	for i, v := range s.Data {
		if v < -1 || v > 1 {
			t.Fatalf("score %d out of range: %g", i, v)
		}
	}
}

func TestCorrelate_FlatTemplate(t *testing.T) {
	page := blankPage(30, 30)
	paste(page, headImage(12, 10), 5, 5)

	s, err := Correlate(page, blankPage(6, 6))
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	for i, v := range s.Data {
		if v != 0 {
			t.Fatalf("flat template should score 0 everywhere, got %g at %d", v, i)
		}
	}
}

func TestCorrelate_TemplateLargerThanPage(t *testing.T) {
	s, err := Correlate(blankPage(10, 10), headImage(12, 10))
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if s.Rows != 0 || s.Cols != 0 || len(s.Data) != 0 {
		t.Errorf("expected an empty surface, got %dx%d", s.Rows, s.Cols)
	}
	if _, row, col := s.Max(); row != -1 || col != -1 {
		t.Errorf("Max on empty surface: got (%d,%d)", row, col)
	}
}

func TestCorrelate_Inverted(t *testing.T) {
	head := headImage(12, 10)
	inv := image.NewGray(head.Bounds())
	for i, v := range head.Pix {
		inv.Pix[i] = 255 - v
	}

	s, err := Correlate(head, inv)
	if err != nil {
		t.Fatalf("Correlate failed: %v", err)
	}
	if s.Rows != 1 || s.Cols != 1 {
		t.Fatalf("surface size: got %dx%d, want 1x1", s.Rows, s.Cols)
	}
	if v := s.At(0, 0); v > -0.999 {
		t.Errorf("inverted template: got %g, want ~-1", v)
	}
}

func TestRawMatches_StrictThreshold(t *testing.T) {
	s := &Surface{Rows: 2, Cols: 2, Data: []float64{0.55, 0.56, 0.9, -1}}

	got := NewMatcher().RawMatches(s)
	want := []RawMatch{{Row: 0, Col: 1, Score: 0.56}, {Row: 1, Col: 0, Score: 0.9}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCluster(t *testing.T) {
	tests := []struct {
		name    string
		matches []RawMatch
		w, h    int
		want    []int // cluster sizes
	}{
		{"overlapping", []RawMatch{{Row: 0, Col: 0}, {Row: 5, Col: 5}}, 10, 10, []int{2}},
		{"overlapping reversed", []RawMatch{{Row: 5, Col: 5}, {Row: 0, Col: 0}}, 10, 10, []int{2}},
		{"touching columns", []RawMatch{{Row: 0, Col: 0}, {Row: 0, Col: 10}}, 10, 10, []int{1, 1}},
		{"touching rows", []RawMatch{{Row: 10, Col: 0}, {Row: 0, Col: 0}}, 10, 10, []int{1, 1}},
		{"disjoint on one axis only", []RawMatch{{Row: 0, Col: 0}, {Row: 3, Col: 12}}, 12, 3, []int{1, 1}},
		{"seed chain splits", []RawMatch{{Row: 0, Col: 0}, {Row: 0, Col: 8}, {Row: 0, Col: 16}}, 10, 10, []int{2, 1}},
		{"joins first overlapping cluster", []RawMatch{{Row: 0, Col: 0}, {Row: 0, Col: 15}, {Row: 0, Col: 7}}, 10, 10, []int{2, 1}},
		{"none", nil, 10, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cluster(tt.matches, tt.w, tt.h)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d clusters, want %d: %v", len(got), len(tt.want), got)
			}
			for i, c := range got {
				if len(c) != tt.want[i] {
					t.Errorf("cluster %d: got %d members, want %d", i, len(c), tt.want[i])
				}
			}
		})
	}
}

func TestMatcherMatch(t *testing.T) {
	head := headImage(12, 10)
	page := blankPage(60, 40)
	paste(page, head, 20, 15)
	paste(page, head, 44, 5)

	tmpl := &templates.Template{Name: "head", Length: music.Crotchet, Image: head}
	detections, err := NewMatcher().Match(page, tmpl)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("got %d detections, want 2: %+v", len(detections), detections)
	}

	// Seeds are found in row-major order, so the higher blob comes first.
	want := []struct{ row, col float64 }{{10, 50}, {20, 26}}
	for i, d := range detections {
		if math.Abs(d.Row-want[i].row) > 0.5 || math.Abs(d.Col-want[i].col) > 0.5 {
			t.Errorf("detection %d: centre (%.2f,%.2f), want (%g,%g)", i, d.Row, d.Col, want[i].row, want[i].col)
		}
		if d.Template != tmpl {
			t.Errorf("detection %d does not carry its template", i)
		}
		if d.Members < 1 || d.Score < 0.999 {
			t.Errorf("detection %d: members=%d score=%g", i, d.Members, d.Score)
		}
	}
}

// Odd template sizes offset the centre by the integer half size.
func TestMatcherMatch_OddTemplateCentre(t *testing.T) {
	head := headImage(11, 9)
	page := blankPage(60, 40)
	paste(page, head, 20, 15)

	tmpl := &templates.Template{Name: "head", Length: music.Crotchet, Image: head}
	detections, err := NewMatcher().Match(page, tmpl)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("got %d detections, want 1: %+v", len(detections), detections)
	}
	if d := detections[0]; math.Abs(d.Row-19) > 1e-9 || math.Abs(d.Col-25) > 1e-9 {
		t.Errorf("centre: got (%g,%g), want (19,25)", d.Row, d.Col)
	}
}

func TestMatcherMatch_NoSymbols(t *testing.T) {
	page := blankPage(60, 40)
	drawRow(page, 20, 0, 60)

	tmpl := &templates.Template{Name: "head", Length: music.Minim, Image: headImage(12, 10)}
	detections, err := NewMatcher().Match(page, tmpl)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("expected no detections, got %+v", detections)
	}
}

func TestInitBackend_Once(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]BackendInfo, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = InitBackend()
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if r.Name == "" {
			t.Fatalf("result %d: empty backend name", i)
		}
		if r != results[0] {
			t.Errorf("result %d differs: %+v vs %+v", i, r, results[0])
		}
	}
}
