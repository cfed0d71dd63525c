// Package imageurl builds delivery URLs for image assets. Resizing and format
// conversion happen on the image CDN; this package only encodes the request.
package imageurl

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ephemera/internal/asset"
	"github.com/ephemera/internal/content"
)

// Fit modes accepted by the CDN.
const (
	FitClip     = "clip"
	FitCrop     = "crop"
	FitFill     = "fill"
	FitFillMax  = "fillmax"
	FitMax      = "max"
	FitScale    = "scale"
	FitMin      = "min"
	AutoFormat  = "format"
	DefaultBase = "https://cdn.sanity.io"
)

var ErrMissingAsset = errors.New("image has no asset reference")

// Config locates the images of one dataset.
type Config struct {
	ProjectID string
	Dataset   string
	BaseURL   string
}

// Source creates builders for a dataset.
type Source struct {
	cfg Config
}

// New returns a Source, defaulting the base URL to the public CDN.
func New(cfg Config) Source {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBase
	}
	return Source{cfg: cfg}
}

// Image starts a builder for an image field value.
func (s Source) Image(img content.Image) Builder {
	return Builder{cfg: s.cfg, ref: img.AssetRef(), crop: img.Crop}
}

// Ref starts a builder for a raw asset reference.
func (s Source) Ref(ref string) Builder {
	return Builder{cfg: s.cfg, ref: strings.TrimSpace(ref)}
}

// Builder accumulates transform parameters. Methods return modified copies.
type Builder struct {
	cfg     Config
	ref     string
	crop    *content.Crop
	width   int
	height  int
	fit     string
	format  string
	auto    string
	quality int
}

// Width sets the output width in pixels.
func (b Builder) Width(px int) Builder {
	b.width = px
	return b
}

// Height sets the output height in pixels.
func (b Builder) Height(px int) Builder {
	b.height = px
	return b
}

// Fit sets how the image is fitted into width × height.
func (b Builder) Fit(mode string) Builder {
	b.fit = mode
	return b
}

// Format forces an output format such as "webp" or "jpg".
func (b Builder) Format(format string) Builder {
	b.format = format
	return b
}

// Auto lets the CDN pick a format based on the Accept header.
func (b Builder) Auto(mode string) Builder {
	b.auto = mode
	return b
}

// Quality sets the compression quality (1-100).
func (b Builder) Quality(q int) Builder {
	b.quality = q
	return b
}

// URL renders the delivery URL.
func (b Builder) URL() (string, error) {
	if b.ref == "" {
		return "", ErrMissingAsset
	}
	ref, err := asset.ParseRef(b.ref)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("%s/images/%s/%s/%s",
		b.cfg.BaseURL,
		url.PathEscape(b.cfg.ProjectID),
		url.PathEscape(b.cfg.Dataset),
		ref.FileName(),
	)

	params := url.Values{}
	if rect, ok := cropRect(ref, b.crop); ok {
		params.Set("rect", rect)
	}
	if b.width > 0 {
		params.Set("w", strconv.Itoa(b.width))
	}
	if b.height > 0 {
		params.Set("h", strconv.Itoa(b.height))
	}
	if b.fit != "" {
		params.Set("fit", b.fit)
	}
	if b.format != "" {
		params.Set("fm", b.format)
	}
	if b.auto != "" {
		params.Set("auto", b.auto)
	}
	if b.quality > 0 {
		params.Set("q", strconv.Itoa(b.quality))
	}

	if encoded := params.Encode(); encoded != "" {
		return path + "?" + encoded, nil
	}
	return path, nil
}

// String renders the URL, or "" when the image cannot be addressed.
func (b Builder) String() string {
	u, err := b.URL()
	if err != nil {
		return ""
	}
	return u
}

func cropRect(ref asset.Ref, crop *content.Crop) (string, bool) {
	if crop == nil {
		return "", false
	}
	left := int(math.Round(crop.Left * float64(ref.Width)))
	top := int(math.Round(crop.Top * float64(ref.Height)))
	width := int(math.Round(float64(ref.Width)-crop.Right*float64(ref.Width))) - left
	height := int(math.Round(float64(ref.Height)-crop.Bottom*float64(ref.Height))) - top

	if width <= 0 || height <= 0 {
		return "", false
	}
	if left == 0 && top == 0 && width == ref.Width && height == ref.Height {
		return "", false
	}
	return fmt.Sprintf("%d,%d,%d,%d", left, top, width, height), true
}
