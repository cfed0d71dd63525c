package db

import (
	"time"

	"github.com/ephemera/internal/content"
)

// Designer 定义了设计师模型
type Designer struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	FirstName string
	LastName  string
	Slug      string          `gorm:"index"`
	Bio       []content.Block `gorm:"serializer:json"`
	Records   []Record
}

func (d Designer) Content() content.Designer {
	return content.Designer{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Slug:      d.Slug,
		Bio:       d.Bio,
	}
}

func DesignerFromContent(d content.Designer) Designer {
	return Designer{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Slug:      d.Slug,
		Bio:       d.Bio,
	}
}
