package imaging

import (
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/ironsheep/sheet-omr/internal/errors"
)

// createTestImage creates a solid test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	imgPath := createTestImage(t, 100, 60, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	img, err := Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x60", bounds.Dx(), bounds.Dy())
	}
}

func TestLoad_Errors(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	tests := []struct {
		name string
		path string
	}{
		{"non-existent", "/nonexistent/path/to/image.png"},
		{"invalid data", tmpFile.Name()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if !stderrors.Is(err, apperrors.ErrInvalidImage) {
				t.Errorf("expected InvalidImage, got %v", err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	imgPath := createTestImage(t, 12, 10, color.Black)
	defer os.Remove(imgPath)

	data, err := os.ReadFile(imgPath)
	if err != nil {
		t.Fatalf("failed to read test image: %v", err)
	}

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 10 {
		t.Errorf("unexpected dimensions: %v", img.Bounds())
	}

	if _, err := Decode([]byte("garbage")); !stderrors.Is(err, apperrors.ErrInvalidImage) {
		t.Errorf("expected InvalidImage for garbage bytes, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	src := image.NewGray(image.Rect(0, 0, 8, 4))
	src.SetGray(3, 2, color.Gray{Y: 200})

	if err := Save(src, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	r, _, _, _ := img.At(3, 2).RGBA()
	if uint8(r>>8) != 200 {
		t.Errorf("pixel (3,2): got %d, want 200", uint8(r>>8))
	}

	if err := Save(src, filepath.Join(dir, "out.xyz")); err == nil {
		t.Error("Save should fail for an unknown extension")
	}
}

func TestLoadImageInfo(t *testing.T) {
	imgPath := createTestImage(t, 200, 150, color.RGBA{0, 0, 255, 255})
	defer os.Remove(imgPath)

	info, err := LoadImageInfo(imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes should be positive, got %d", info.FileSizeBytes)
	}
}
