// Package view maps content records to the presentational components of the
// site and renders them through the embedded templates.
package view

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/imageurl"
)

// Social card size.
const (
	OGWidth  = 1200
	OGHeight = 630
)

const (
	thumbWidth = 640
	fullWidth  = 2000
	mainWidth  = 1200

	thumbQuality = 75
)

// Meta is the head metadata of a page.
type Meta struct {
	Title         string
	Description   string
	CanonicalURL  string
	Image         string
	ImageAlt      string
	Type          string
	PublishedTime string
	SiteName      string
}

// ItemInfo is the factual summary shown beside a record.
type ItemInfo struct {
	Title       string
	Dimensions  string
	ArtworkDate string
	Color       string
	PublishedAt string
}

// DesignerInfo credits the designer of a record.
type DesignerInfo struct {
	Name string
	URL  string
}

// TagLink is a tag or typeface chip.
type TagLink struct {
	Title string
	Slug  string
	Kind  string
}

// GalleryImage is one image of a record at thumbnail and full size.
type GalleryImage struct {
	Thumb   string
	Full    string
	Alt     string
	Caption string
}

// Item is the composed item page body.
type Item struct {
	Slug     string
	Info     ItemInfo
	Designer *DesignerInfo
	Main     *GalleryImage
	Notes    template.HTML
	Tags     []TagLink
	Images   []GalleryImage
	Share    []ShareLink
}

// Meta builds head metadata for a record.
func (v *Views) Meta(rec content.Record) Meta {
	meta := Meta{
		Title:        PageTitle(rec.Title, v.cfg.SiteName),
		Description:  describe(rec),
		CanonicalURL: v.URL(ItemPath(rec.Slug)),
		Type:         "article",
		SiteName:     v.cfg.SiteName,
	}
	if !rec.PublishedAt.IsZero() {
		meta.PublishedTime = rec.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if rec.MainImage != nil {
		meta.Image = v.cfg.Images.Image(*rec.MainImage).
			Width(OGWidth).
			Height(OGHeight).
			Fit(imageurl.FitCrop).
			Format("jpg").
			Auto(imageurl.AutoFormat).
			String()
		meta.ImageAlt = strings.TrimSpace(rec.MainImage.Alt)
	}
	return meta
}

func describe(rec content.Record) string {
	parts := []string{strings.TrimSpace(rec.Title)}
	if rec.Designer != nil && rec.Designer.Name() != "" {
		parts[0] += " by " + rec.Designer.Name()
	}
	if t, ok := rec.ArtworkTime(); ok {
		parts = append(parts, strconv.Itoa(t.Year()))
	}
	return strings.Join(parts, ", ")
}

// NewItemInfo formats the factual fields of a record.
func NewItemInfo(rec content.Record) ItemInfo {
	info := ItemInfo{
		Title:      rec.Title,
		Dimensions: FormatDimensions(rec.Width, rec.Height),
	}
	if t, ok := rec.ArtworkTime(); ok {
		info.ArtworkDate = t.Format("2 January 2006")
	} else {
		info.ArtworkDate = strings.TrimSpace(rec.ArtworkDate)
	}
	if rec.Color != nil {
		info.Color = strings.TrimSpace(rec.Color.Hex)
	}
	if !rec.PublishedAt.IsZero() {
		info.PublishedAt = rec.PublishedAt.UTC().Format("2 January 2006")
	}
	return info
}

// FormatDimensions renders "W × H mm"; it is empty unless both sides are known.
func FormatDimensions(width, height *float64) string {
	if width == nil || height == nil {
		return ""
	}
	return formatMillimetres(*width) + " × " + formatMillimetres(*height) + " mm"
}

func formatMillimetres(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewDesignerInfo returns nil when the record has no designer.
func NewDesignerInfo(designer *content.Designer) *DesignerInfo {
	if designer == nil || designer.Name() == "" {
		return nil
	}
	info := &DesignerInfo{Name: designer.Name()}
	if slug := strings.TrimSpace(designer.Slug); slug != "" {
		info.URL = DesignerPath(slug)
	}
	return info
}

// NewTags lists tags then typefaces, dropping duplicates by title.
func NewTags(rec content.Record) []TagLink {
	seen := make(map[string]bool, len(rec.Tags)+len(rec.Typefaces))
	var links []TagLink

	add := func(title, slug, kind string) {
		title = strings.TrimSpace(title)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			return
		}
		seen[key] = true
		links = append(links, TagLink{Title: title, Slug: slug, Kind: kind})
	}

	for _, tag := range rec.Tags {
		add(tag.Title, tag.Slug, "tag")
	}
	for _, tf := range rec.Typefaces {
		add(tf.Title, tf.Slug, "typeface")
	}
	return links
}

// Images returns the gallery of a record. Entries that cannot be addressed are
// skipped.
func (v *Views) Images(rec content.Record) []GalleryImage {
	images := make([]GalleryImage, 0, len(rec.Images))
	for _, img := range rec.Images {
		if g, ok := v.galleryImage(img, fullWidth); ok {
			images = append(images, g)
		}
	}
	return images
}

func (v *Views) galleryImage(img content.Image, full int) (GalleryImage, bool) {
	b := v.cfg.Images.Image(img).Fit(imageurl.FitMax).Auto(imageurl.AutoFormat)
	thumb, err := b.Width(thumbWidth).Quality(thumbQuality).URL()
	if err != nil {
		return GalleryImage{}, false
	}
	return GalleryImage{
		Thumb:   thumb,
		Full:    b.Width(full).String(),
		Alt:     strings.TrimSpace(img.Alt),
		Caption: strings.TrimSpace(img.Caption),
	}, true
}

// Item composes every component of the item page.
func (v *Views) Item(rec content.Record) Item {
	item := Item{
		Slug:     rec.Slug,
		Info:     NewItemInfo(rec),
		Designer: NewDesignerInfo(rec.Designer),
		Notes:    v.text.Render(rec.Notes),
		Tags:     NewTags(rec),
		Images:   v.Images(rec),
		Share:    ShareLinks(v.URL(ItemPath(rec.Slug)), PageTitle(rec.Title, v.cfg.SiteName)),
	}
	if rec.MainImage != nil {
		if main, ok := v.galleryImage(*rec.MainImage, mainWidth); ok {
			if main.Alt == "" {
				main.Alt = rec.Title
			}
			item.Main = &main
		}
	}
	return item
}

// PageTitle renders "{title} | {site}".
func PageTitle(title, site string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return site
	}
	return title + " | " + site
}

// ItemPath is the site path of a record page.
func ItemPath(slug string) string {
	return "/item/" + slug
}

// DesignerPath is the site path of a designer page.
func DesignerPath(slug string) string {
	return "/designer/" + slug
}
