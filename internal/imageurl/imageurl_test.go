package imageurl

import (
	"errors"
	"testing"

	"github.com/ephemera/internal/asset"
	"github.com/ephemera/internal/content"
)

func testSource() Source {
	return New(Config{ProjectID: "ab12cd34", Dataset: "production"})
}

func TestBuilderURL(t *testing.T) {
	img := content.Image{Asset: &content.Reference{Ref: "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"}}

	got, err := testSource().Image(img).Width(320).Height(240).Fit(FitMax).Auto(AutoFormat).URL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://cdn.sanity.io/images/ab12cd34/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg?auto=format&fit=max&h=240&w=320"
	if got != want {
		t.Fatalf("URL() = %q, want %q", got, want)
	}
}

func TestBuilderIsImmutable(t *testing.T) {
	base := testSource().Ref("image-abc-100x100-png")
	small := base.Width(10)
	large := base.Width(1000)

	if small.String() == large.String() {
		t.Fatal("builders derived from the same base should not share state")
	}
	if base.String() != "https://cdn.sanity.io/images/ab12cd34/production/abc-100x100.png" {
		t.Fatalf("base builder was modified: %s", base.String())
	}
}

func TestBuilderCropRect(t *testing.T) {
	img := content.Image{
		Asset: &content.Reference{Ref: "image-abc-1000x500-png"},
		Crop:  &content.Crop{Left: 0.1, Top: 0.2, Right: 0.1, Bottom: 0},
	}
	got := testSource().Image(img).Width(100).Format("webp").Quality(80).String()
	want := "https://cdn.sanity.io/images/ab12cd34/production/abc-1000x500.png?fm=webp&q=80&rect=100%2C100%2C800%2C400&w=100"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	full := content.Image{Asset: img.Asset, Crop: &content.Crop{}}
	if u := testSource().Image(full).String(); u != "https://cdn.sanity.io/images/ab12cd34/production/abc-1000x500.png" {
		t.Fatalf("empty crop should not add rect: %s", u)
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := testSource().Image(content.Image{}).URL(); !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("expected ErrMissingAsset, got %v", err)
	}
	if _, err := testSource().Ref("image-nope").URL(); !errors.Is(err, asset.ErrMalformedRef) {
		t.Fatalf("expected ErrMalformedRef, got %v", err)
	}
	if s := testSource().Ref("").String(); s != "" {
		t.Fatalf("expected empty string for missing asset, got %q", s)
	}
}

func TestCustomBaseURL(t *testing.T) {
	src := New(Config{ProjectID: "p", Dataset: "d", BaseURL: "http://localhost:8080/"})
	if got := src.Ref("image-abc-1x1-gif").String(); got != "http://localhost:8080/images/p/d/abc-1x1.gif" {
		t.Fatalf("unexpected url %q", got)
	}
}
