package asset

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "Tb9Ew8CXIwaY6R1kjMvI0uRR" || ref.Width != 2000 || ref.Height != 3000 || ref.Format != "jpg" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg" {
		t.Fatalf("round trip mismatch: %s", ref.String())
	}
	if ref.FileName() != "Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg" {
		t.Fatalf("unexpected file name: %s", ref.FileName())
	}
}

func TestParseRefRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"file-abc-10x10-pdf",
		"image-abc-10x10",
		"image-abc-tenxten-png",
		"image-abc-0x10-png",
		"image--10x10-png",
	} {
		if _, err := ParseRef(raw); !errors.Is(err, ErrMalformedRef) {
			t.Errorf("ParseRef(%q) error = %v, want ErrMalformedRef", raw, err)
		}
	}
}

func TestRefFromFileAndStore(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "poster.png")
	writePNG(t, source, 12, 7)

	ref, err := RefFromFile(source)
	if err != nil {
		t.Fatalf("RefFromFile: %v", err)
	}
	if ref.Width != 12 || ref.Height != 7 || ref.Format != "png" || len(ref.ID) != 40 {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	again, err := RefFromFile(source)
	if err != nil || again != ref {
		t.Fatalf("expected stable ref, got %+v (%v)", again, err)
	}

	dest, err := Store(filepath.Join(dir, "assets"), source, ref)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if filepath.Base(dest) != ref.FileName() {
		t.Fatalf("unexpected destination %s", dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestRefFromFileRejectsNonImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := RefFromFile(path); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}
