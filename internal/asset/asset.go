// Package asset handles image asset references of the form
// image-<id>-<width>x<height>-<format>.
package asset

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrMalformedRef = errors.New("malformed image asset reference")
	ErrNotAnImage   = errors.New("file is not a supported image")
)

// Ref is a parsed image asset reference.
type Ref struct {
	ID     string
	Width  int
	Height int
	Format string
}

// ParseRef splits "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg".
func ParseRef(raw string) (Ref, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" || parts[3] == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, raw)
	}

	dims := strings.SplitN(parts[2], "x", 2)
	if len(dims) != 2 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, raw)
	}
	width, err := strconv.Atoi(dims[0])
	if err != nil || width <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, raw)
	}
	height, err := strconv.Atoi(dims[1])
	if err != nil || height <= 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformedRef, raw)
	}

	return Ref{ID: parts[1], Width: width, Height: height, Format: parts[3]}, nil
}

// String formats the reference back into its canonical form.
func (r Ref) String() string {
	return fmt.Sprintf("image-%s-%dx%d-%s", r.ID, r.Width, r.Height, r.Format)
}

// FileName is the name of the delivered file, e.g. "<id>-2000x3000.jpg".
func (r Ref) FileName() string {
	return fmt.Sprintf("%s-%dx%d.%s", r.ID, r.Width, r.Height, r.Format)
}

// RefFromFile derives a reference from a local image: the id is the sha1 of
// the contents and the dimensions come from the image header.
func RefFromFile(path string) (Ref, error) {
	file, err := os.Open(path)
	if err != nil {
		return Ref{}, err
	}
	defer file.Close()

	hasher := sha1.New()
	cfg, format, err := image.DecodeConfig(io.TeeReader(file, hasher))
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %s: %v", ErrNotAnImage, filepath.Base(path), err)
	}
	// DecodeConfig stops after the header; hash the remainder as well.
	if _, err := io.Copy(hasher, file); err != nil {
		return Ref{}, err
	}

	if format == "jpeg" {
		format = "jpg"
	}
	return Ref{
		ID:     hex.EncodeToString(hasher.Sum(nil)),
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

// Store copies the source file into dir under the reference's file name and
// returns the destination path. Existing files are left untouched.
func Store(dir, source string, ref Ref) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, ref.FileName())
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	in, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	return dest, out.Close()
}
