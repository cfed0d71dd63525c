package db

import (
	"time"

	"github.com/ephemera/internal/content"
)

// Record 定义了藏品模型
type Record struct {
	ID          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string          `gorm:"not null"`
	Slug        string          `gorm:"uniqueIndex;not null"`
	PublishedAt time.Time       `gorm:"index"`
	MainImage   *content.Image  `gorm:"serializer:json"`
	Images      []content.Image `gorm:"serializer:json"`
	DesignerID  *string         `gorm:"index"`
	Designer    *Designer
	Tags        []Tag      `gorm:"many2many:record_tags;"`
	Typefaces   []Typeface `gorm:"many2many:record_typefaces;"`
	Width       *float64
	Height      *float64
	ArtworkDate string          `gorm:"index"`
	Color       *content.Color  `gorm:"serializer:json"`
	Notes       []content.Block `gorm:"serializer:json"`
}

// Content converts the row into the shape returned by content queries.
func (r Record) Content() content.Record {
	out := content.Record{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		PublishedAt: r.PublishedAt.UTC(),
		MainImage:   r.MainImage,
		Images:      r.Images,
		Width:       r.Width,
		Height:      r.Height,
		ArtworkDate: r.ArtworkDate,
		Color:       r.Color,
		Notes:       r.Notes,
	}
	if r.Designer != nil {
		designer := r.Designer.Content()
		out.Designer = &designer
	}
	for _, tag := range r.Tags {
		out.Tags = append(out.Tags, content.Tag{ID: tag.ID, Title: tag.Title, Slug: tag.Slug})
	}
	for _, tf := range r.Typefaces {
		out.Typefaces = append(out.Typefaces, content.Typeface{ID: tf.ID, Title: tf.Title, Slug: tf.Slug})
	}
	return out
}

// RecordFromContent builds a row from a content record. Referenced documents are
// carried along so that associations can be upserted with it.
func RecordFromContent(rec content.Record) Record {
	row := Record{
		ID:          rec.ID,
		Title:       rec.Title,
		Slug:        rec.Slug,
		PublishedAt: rec.PublishedAt,
		MainImage:   rec.MainImage,
		Images:      rec.Images,
		Width:       rec.Width,
		Height:      rec.Height,
		ArtworkDate: rec.ArtworkDate,
		Color:       rec.Color,
		Notes:       rec.Notes,
	}
	if rec.Designer != nil && rec.Designer.ID != "" {
		designer := DesignerFromContent(*rec.Designer)
		row.Designer = &designer
		row.DesignerID = &designer.ID
	}
	for _, tag := range rec.Tags {
		if tag.ID == "" {
			continue
		}
		row.Tags = append(row.Tags, Tag{ID: tag.ID, Title: tag.Title, Slug: tag.Slug})
	}
	for _, tf := range rec.Typefaces {
		if tf.ID == "" {
			continue
		}
		row.Typefaces = append(row.Typefaces, Typeface{ID: tf.ID, Title: tf.Title, Slug: tf.Slug})
	}
	return row
}
