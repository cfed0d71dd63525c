package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/db"
	"github.com/ephemera/internal/schema"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRecordTitleMissing = errors.New("record title is required")
	ErrRecordImageMissing = errors.New("record main image is required")
	ErrNegativeDimension  = errors.New("record dimensions must not be negative")
	ErrSlugTaken          = errors.New("slug is already used by another record")
	ErrUnknownType        = errors.New("unknown document type")
)

// RecordService serves content from the local mirror database.
type RecordService struct {
	db  *gorm.DB
	now func() time.Time
}

var _ cms.Source = (*RecordService)(nil)

// NewRecordService returns a new RecordService instance.
func NewRecordService(gdb *gorm.DB) *RecordService {
	return &RecordService{db: gdb, now: time.Now}
}

func (s *RecordService) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Designer").
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("title") }).
		Preload("Typefaces", func(tx *gorm.DB) *gorm.DB { return tx.Order("title") })
}

// Slugs lists the slugs of every document of docType.
func (s *RecordService) Slugs(ctx context.Context, docType string) ([]string, error) {
	var model any
	switch docType {
	case schema.RecordType:
		model = &db.Record{}
	case schema.DesignerType:
		model = &db.Designer{}
	case schema.TagType:
		model = &db.Tag{}
	case schema.TypefaceType:
		model = &db.Typeface{}
	default:
		return nil, ErrUnknownType
	}

	var slugs []string
	if err := s.db.WithContext(ctx).Model(model).
		Where("slug <> ''").
		Order("slug").
		Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	return slugs, nil
}

// Record fetches one record by slug. An unknown slug yields a zero Record.
func (s *RecordService) Record(ctx context.Context, slug string) (content.Record, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Record{}, nil
	}

	var row db.Record
	if err := s.withRelations(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return content.Record{}, nil
		}
		return content.Record{}, err
	}
	return row.Content(), nil
}

// Records lists records under a named ordering.
func (s *RecordService) Records(ctx context.Context, ordering string) ([]content.Record, error) {
	o, ok := schema.Record.Ordering(ordering)
	if !ok {
		return nil, cms.ErrUnknownOrdering
	}

	query := s.withRelations(ctx).Where("slug <> ''")
	for _, column := range o.Columns() {
		query = query.Order(column)
	}

	var rows []db.Record
	if err := query.Order("slug").Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]content.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Content())
	}
	return records, nil
}

// Designer fetches one designer with their records, newest first.
func (s *RecordService) Designer(ctx context.Context, slug string) (content.Designer, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return content.Designer{}, nil
	}

	var row db.Designer
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return content.Designer{}, nil
		}
		return content.Designer{}, err
	}

	var rows []db.Record
	if err := s.withRelations(ctx).
		Where("designer_id = ?", row.ID).
		Order("published_at DESC").
		Find(&rows).Error; err != nil {
		return content.Designer{}, err
	}

	designer := row.Content()
	for _, rec := range rows {
		designer.Records = append(designer.Records, rec.Content())
	}
	return designer, nil
}

// Save validates a record and writes it with its references. A missing slug is
// derived from the title and a missing publishedAt defaults to now.
func (s *RecordService) Save(ctx context.Context, rec content.Record) (content.Record, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	if rec.Title == "" {
		return content.Record{}, ErrRecordTitleMissing
	}
	if rec.MainImage == nil || rec.MainImage.AssetRef() == "" {
		return content.Record{}, ErrRecordImageMissing
	}
	if (rec.Width != nil && *rec.Width < 0) || (rec.Height != nil && *rec.Height < 0) {
		return content.Record{}, ErrNegativeDimension
	}

	rec.Slug = strings.TrimSpace(rec.Slug)
	if rec.Slug == "" {
		rec.Slug = schema.Slugify(rec.Title, 96)
	}
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = s.now().UTC()
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}

	var taken int64
	if err := s.db.WithContext(ctx).Model(&db.Record{}).
		Where("slug = ? AND id <> ?", rec.Slug, rec.ID).
		Count(&taken).Error; err != nil {
		return content.Record{}, err
	}
	if taken > 0 {
		return content.Record{}, ErrSlugTaken
	}

	row := db.RecordFromContent(rec)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.Designer != nil {
			// Bios only arrive with the designer document itself.
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "slug", "updated_at"}),
			}).Create(row.Designer).Error; err != nil {
				return err
			}
		}
		if len(row.Tags) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row.Tags).Error; err != nil {
				return err
			}
		}
		if len(row.Typefaces) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row.Typefaces).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return err
		}
		if err := replaceAssociation(tx, &row, "Tags", row.Tags); err != nil {
			return err
		}
		return replaceAssociation(tx, &row, "Typefaces", row.Typefaces)
	})
	if err != nil {
		return content.Record{}, err
	}

	return s.Record(ctx, rec.Slug)
}

// SaveDesigner upserts a designer document.
func (s *RecordService) SaveDesigner(ctx context.Context, designer content.Designer) error {
	if strings.TrimSpace(designer.ID) == "" {
		designer.ID = uuid.NewString()
	}
	if strings.TrimSpace(designer.Slug) == "" {
		designer.Slug = schema.Slugify(designer.LastName, 96)
	}
	row := db.DesignerFromContent(designer)
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func replaceAssociation[T any](tx *gorm.DB, row *db.Record, name string, values []T) error {
	association := tx.Model(row).Association(name)
	if len(values) == 0 {
		return association.Clear()
	}
	return association.Replace(values)
}
