// Package content holds the document shapes returned by the content queries.
package content

import (
	"strings"
	"time"
)

// Reference points at another document or asset by id.
type Reference struct {
	Ref  string `json:"_ref" yaml:"_ref"`
	Type string `json:"_type,omitempty" yaml:"_type,omitempty"`
	Key  string `json:"_key,omitempty" yaml:"_key,omitempty"`
}

// Crop is expressed as fractions of the source image trimmed from each edge.
type Crop struct {
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
}

// Image is an image field value: an asset reference plus editorial metadata.
type Image struct {
	Type    string     `json:"_type,omitempty" yaml:"_type,omitempty"`
	Key     string     `json:"_key,omitempty" yaml:"_key,omitempty"`
	Asset   *Reference `json:"asset,omitempty" yaml:"asset,omitempty"`
	Alt     string     `json:"alt,omitempty" yaml:"alt,omitempty"`
	Caption string     `json:"caption,omitempty" yaml:"caption,omitempty"`
	Crop    *Crop      `json:"crop,omitempty" yaml:"crop,omitempty"`
}

// AssetRef returns the referenced asset id or "" when the image is malformed.
func (i Image) AssetRef() string {
	if i.Asset == nil {
		return ""
	}
	return strings.TrimSpace(i.Asset.Ref)
}

// Color is the value of a color field.
type Color struct {
	Hex   string  `json:"hex" yaml:"hex"`
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// Designer is a person credited on records.
type Designer struct {
	ID        string   `json:"_id,omitempty"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Slug      string   `json:"slug"`
	Bio       []Block  `json:"bio,omitempty"`
	Records   []Record `json:"records,omitempty"`
}

// Name joins first and last name, skipping empty parts.
func (d Designer) Name() string {
	return strings.TrimSpace(strings.Join(strings.Fields(d.FirstName+" "+d.LastName), " "))
}

// Tag is a free-form subject label.
type Tag struct {
	ID    string `json:"_id,omitempty"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Typeface is a typeface used on a record.
type Typeface struct {
	ID    string `json:"_id,omitempty"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// Record is a single piece in the collection.
type Record struct {
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	PublishedAt time.Time  `json:"publishedAt"`
	MainImage   *Image     `json:"mainImage,omitempty"`
	Images      []Image    `json:"images,omitempty"`
	Designer    *Designer  `json:"designer,omitempty"`
	Tags        []Tag      `json:"tags,omitempty"`
	Typefaces   []Typeface `json:"typefaces,omitempty"`
	Width       *float64   `json:"width,omitempty"`
	Height      *float64   `json:"height,omitempty"`
	ArtworkDate string     `json:"artworkDate,omitempty"`
	Color       *Color     `json:"color,omitempty"`
	Notes       []Block    `json:"notes,omitempty"`
}

// Found reports whether the query matched a document. Absent documents come back
// zero-valued, so a missing slug is the signal.
func (r Record) Found() bool {
	return strings.TrimSpace(r.Slug) != ""
}

// Published reports whether every required field is present.
func (r Record) Published() bool {
	if !r.Found() || strings.TrimSpace(r.Title) == "" || r.PublishedAt.IsZero() {
		return false
	}
	return r.MainImage != nil && r.MainImage.AssetRef() != ""
}

// ArtworkTime parses ArtworkDate, returning false when absent or malformed.
func (r Record) ArtworkTime() (time.Time, bool) {
	if strings.TrimSpace(r.ArtworkDate) == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(r.ArtworkDate))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
