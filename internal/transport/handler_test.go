package transport

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/sheet-omr/internal/config"
	"github.com/ironsheep/sheet-omr/internal/music"
	"github.com/ironsheep/sheet-omr/internal/scanner"
	"github.com/ironsheep/sheet-omr/internal/templates"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func blankGray(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func fillEllipse(img *image.Gray, cx, cy, a, b float64) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx, dy := (float64(x)-cx)/a, (float64(y)-cy)/b
			if dx*dx+dy*dy <= 1 {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
}

// sheetPage has stave lines at rows 10..50 and two note heads: one on the
// middle line to the left, one on the top line to the right.
func sheetPage() *image.Gray {
	img := blankGray(96, 64)
	for _, y := range []int{10, 20, 30, 40, 50} {
		for _, r := range []struct{ dy, inset int }{{-2, 4}, {-1, 2}, {0, 0}, {1, 2}, {2, 4}} {
			for x := r.inset; x < 96-r.inset; x++ {
				img.SetGray(x, y+r.dy, color.Gray{Y: 0})
			}
		}
	}
	fillEllipse(img, 27.5, 29.5, 6, 5)
	fillEllipse(img, 67.5, 9.5, 6, 5)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	head := blankGray(12, 10)
	fillEllipse(head, 5.5, 4.5, 6, 5)

	lib := templates.NewLibrary(
		templates.NewFSProvider(fstest.MapFS{"head.png": {Data: encodePNG(t, head)}}),
		[]templates.CatalogEntry{{Name: "head.png", Length: music.Crotchet}},
	)
	return NewHandler(scanner.New(lib, scanner.DefaultOptions()), cfg)
}

// uploadRequest builds a multipart POST with data in the image field and
// any extra form fields.
func uploadRequest(t *testing.T, target string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if data != nil {
		part, err := w.CreateFormFile("image", "sheet.png")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(data)
	}
	for k, v := range fields {
		w.WriteField(k, v)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t, config.Default()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["status"] != "available" || body["backend"] == "" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		order string
		want  []music.Note
	}{
		{"row order", "", []music.Note{{Pitch: music.F5, Length: music.Crotchet}, {Pitch: music.B5, Length: music.Crotchet}}},
		{"column order", "column", []music.Note{{Pitch: music.B5, Length: music.Crotchet}, {Pitch: music.F5, Length: music.Crotchet}}},
	}

	h := newTestHandler(t, config.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{}
			if tt.order != "" {
				fields["order"] = tt.order
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/scan", encodePNG(t, sheetPage()), fields))

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
			}
			var res struct {
				Notes         []music.Note `json:"notes"`
				AnnotatedPath string       `json:"annotated_path"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if len(res.Notes) != len(tt.want) {
				t.Fatalf("notes: got %v, want %v", res.Notes, tt.want)
			}
			for i := range tt.want {
				if res.Notes[i] != tt.want[i] {
					t.Errorf("note %d: got %v, want %v", i, res.Notes[i], tt.want[i])
				}
			}
			if res.AnnotatedPath != "" {
				t.Errorf("uploads should not be annotated, got %q", res.AnnotatedPath)
			}
		})
	}
}

func TestScan_Errors(t *testing.T) {
	small := config.Default()
	small.MaxUploadBytes = 64

	tests := []struct {
		name     string
		cfg      *config.Config
		data     []byte
		fields   map[string]string
		wantCode int
		wantType string
	}{
		{"missing field", config.Default(), nil, nil, http.StatusBadRequest, "validation"},
		{"bad order", config.Default(), []byte("x"), map[string]string{"order": "diagonal"}, http.StatusBadRequest, "validation"},
		{"not an image", config.Default(), []byte("not an image"), nil, http.StatusUnprocessableEntity, "invalid_image"},
		{"no stave", config.Default(), nil, nil, http.StatusUnprocessableEntity, "insufficient_stave_data"},
		{"too large", small, nil, nil, http.StatusRequestEntityTooLarge, "validation"},
	}
	tests[3].data = encodePNG(t, blankGray(40, 40))
	tests[4].data = encodePNG(t, sheetPage())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestHandler(t, tt.cfg).ServeHTTP(rec, uploadRequest(t, "/scan", tt.data, tt.fields))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Type != tt.wantType {
				t.Errorf("type: got %q, want %q", body.Type, tt.wantType)
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	page := sheetPage()
	page.SetGray(90, 60, color.Gray{Y: 0}) // speck

	rec := httptest.NewRecorder()
	newTestHandler(t, config.Default()).ServeHTTP(rec, uploadRequest(t, "/preprocess", encodePNG(t, page), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type: got %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 96 || img.Bounds().Dy() != 64 {
		t.Errorf("size: got %v", img.Bounds())
	}
	r, _, _, _ := img.At(90, 60).RGBA()
	if r>>8 != 255 {
		t.Error("speck should be removed")
	}
	r, _, _, _ = img.At(48, 30).RGBA()
	if r>>8 != 0 {
		t.Error("stave line should be ink")
	}
}
