package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/db"
	"github.com/ephemera/internal/schema"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRecordServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func testImage(id string) *content.Image {
	return &content.Image{Type: "singleImage", Asset: &content.Reference{Ref: "image-" + id + "-800x600-jpg"}}
}

func seedRecords(t *testing.T, svc *RecordService) {
	t.Helper()
	ctx := context.Background()
	designer := &content.Designer{ID: "d-1", FirstName: "Ada", LastName: "Frutiger", Slug: "frutiger"}

	fixtures := []content.Record{
		{
			Title:       "Acme Poster",
			PublishedAt: time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC),
			MainImage:   testImage("acme"),
			Designer:    designer,
			Tags:        []content.Tag{{ID: "t-poster", Title: "Poster", Slug: "poster"}},
			ArtworkDate: "1971-05-02",
		},
		{
			Title:       "River Flyer",
			PublishedAt: time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC),
			MainImage:   testImage("river"),
			Designer:    designer,
			ArtworkDate: "1988-11-20",
		},
		{
			Title:       "Undated Ticket",
			PublishedAt: time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC),
			MainImage:   testImage("ticket"),
		},
		{
			Title:       "Jazz Festival Programme",
			PublishedAt: time.Date(2022, 1, 1, 10, 0, 0, 0, time.UTC),
			MainImage:   testImage("jazz"),
			ArtworkDate: "1965-07-14",
			Typefaces:   []content.Typeface{{ID: "tf-1", Title: "Akzidenz", Slug: "akzidenz"}},
		},
	}
	for _, rec := range fixtures {
		if _, err := svc.Save(ctx, rec); err != nil {
			t.Fatalf("failed to seed %q: %v", rec.Title, err)
		}
	}
}

func TestRecordServiceSlugsFetchMatchingRecords(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)
	ctx := context.Background()

	slugs, err := svc.Slugs(ctx, schema.RecordType)
	if err != nil {
		t.Fatalf("Slugs returned error: %v", err)
	}
	if len(slugs) != 4 {
		t.Fatalf("expected 4 slugs, got %v", slugs)
	}
	for _, slug := range slugs {
		rec, err := svc.Record(ctx, slug)
		if err != nil {
			t.Fatalf("Record(%s) returned error: %v", slug, err)
		}
		if rec.Slug != slug {
			t.Fatalf("expected slug %s, got %s", slug, rec.Slug)
		}
	}

	if _, err := svc.Slugs(ctx, "poster"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRecordServiceKnownSlug(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)

	rec, err := svc.Record(context.Background(), "acme-poster")
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.Title != "Acme Poster" || rec.Slug != "acme-poster" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Designer == nil || rec.Designer.Slug != "frutiger" {
		t.Fatalf("expected designer to be loaded, got %+v", rec.Designer)
	}
	if len(rec.Tags) != 1 || rec.Tags[0].Title != "Poster" {
		t.Fatalf("expected tags to be loaded, got %+v", rec.Tags)
	}
	if !rec.Published() {
		t.Fatal("saved record should be published")
	}
}

func TestRecordServiceUnknownSlug(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))

	rec, err := svc.Record(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if rec.Found() {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestRecordServiceArtworkDateDescIsNonIncreasing(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)

	records, err := svc.Records(context.Background(), schema.OrderArtworkDateDesc)
	if err != nil {
		t.Fatalf("Records returned error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].ArtworkDate > records[i-1].ArtworkDate {
			t.Fatalf("artwork dates increase at %d: %q after %q", i, records[i].ArtworkDate, records[i-1].ArtworkDate)
		}
	}
	if records[0].Slug != "river-flyer" || records[3].Slug != "undated-ticket" {
		t.Fatalf("unexpected order: %s ... %s", records[0].Slug, records[3].Slug)
	}
}

func TestRecordServiceArtworkDateAscKeepsUndatedLast(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)

	records, err := svc.Records(context.Background(), schema.OrderArtworkDateAsc)
	if err != nil {
		t.Fatalf("Records returned error: %v", err)
	}

	var got []string
	for _, rec := range records {
		got = append(got, rec.Slug)
	}
	want := []string{"jazz-festival-programme", "acme-poster", "river-flyer", "undated-ticket"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("artworkDateAsc order = %v, want %v", got, want)
	}
}

func TestRecordServicePublishedAtAsc(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)

	records, err := svc.Records(context.Background(), schema.OrderPublishedAtAsc)
	if err != nil {
		t.Fatalf("Records returned error: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].PublishedAt.Before(records[i-1].PublishedAt) {
			t.Fatalf("publishedAt decreases at %d", i)
		}
	}

	if _, err := svc.Records(context.Background(), "random"); !errors.Is(err, cms.ErrUnknownOrdering) {
		t.Fatalf("expected ErrUnknownOrdering, got %v", err)
	}
}

func TestRecordServiceDesigner(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	seedRecords(t, svc)

	designer, err := svc.Designer(context.Background(), "frutiger")
	if err != nil {
		t.Fatalf("Designer returned error: %v", err)
	}
	if designer.Name() != "Ada Frutiger" {
		t.Fatalf("unexpected designer %+v", designer)
	}
	if len(designer.Records) != 2 || designer.Records[0].Slug != "river-flyer" {
		t.Fatalf("expected records newest first, got %+v", designer.Records)
	}

	missing, err := svc.Designer(context.Background(), "nobody")
	if err != nil || missing.Slug != "" {
		t.Fatalf("expected zero designer, got %+v (%v)", missing, err)
	}
}

func TestRecordServiceSaveValidation(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	ctx := context.Background()
	negative := -1.0

	cases := []struct {
		name string
		rec  content.Record
		want error
	}{
		{"missing title", content.Record{MainImage: testImage("a")}, ErrRecordTitleMissing},
		{"missing image", content.Record{Title: "No Image"}, ErrRecordImageMissing},
		{"broken image", content.Record{Title: "Broken", MainImage: &content.Image{}}, ErrRecordImageMissing},
		{"negative width", content.Record{Title: "Odd", MainImage: testImage("a"), Width: &negative}, ErrNegativeDimension},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Save(ctx, tc.rec); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRecordServiceSaveDerivesDefaultsAndRejectsDuplicateSlug(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	fixed := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	saved, err := svc.Save(ctx, content.Record{Title: "Café Flyer", MainImage: testImage("cafe")})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.Slug != "cafe-flyer" {
		t.Fatalf("expected derived slug, got %q", saved.Slug)
	}
	if !saved.PublishedAt.Equal(fixed) {
		t.Fatalf("expected publishedAt %v, got %v", fixed, saved.PublishedAt)
	}
	if saved.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	if _, err := svc.Save(ctx, content.Record{Title: "Cafe Flyer", MainImage: testImage("other")}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	saved.Title = "Café Flyer (reprint)"
	saved.Tags = []content.Tag{{ID: "t-1", Title: "Reprint", Slug: "reprint"}}
	updated, err := svc.Save(ctx, saved)
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if updated.Title != "Café Flyer (reprint)" || len(updated.Tags) != 1 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	updated.Tags = nil
	cleared, err := svc.Save(ctx, updated)
	if err != nil {
		t.Fatalf("clearing tags returned error: %v", err)
	}
	if len(cleared.Tags) != 0 {
		t.Fatalf("expected tags to be cleared, got %+v", cleared.Tags)
	}
}

func TestRecordServiceKeepsDesignerBio(t *testing.T) {
	svc := NewRecordService(setupRecordServiceTestDB(t))
	ctx := context.Background()

	bio := []content.Block{{Type: "block", Children: []content.Span{{Text: "Swiss typographer."}}}}
	if err := svc.SaveDesigner(ctx, content.Designer{ID: "d-1", FirstName: "Ada", LastName: "Frutiger", Slug: "frutiger", Bio: bio}); err != nil {
		t.Fatalf("SaveDesigner returned error: %v", err)
	}
	seedRecords(t, svc)

	designer, err := svc.Designer(ctx, "frutiger")
	if err != nil {
		t.Fatalf("Designer returned error: %v", err)
	}
	if len(designer.Bio) != 1 || designer.Bio[0].Children[0].Text != "Swiss typographer." {
		t.Fatalf("expected bio to survive record saves, got %+v", designer.Bio)
	}

	slugs, err := svc.Slugs(ctx, schema.DesignerType)
	if err != nil || len(slugs) != 1 || slugs[0] != "frutiger" {
		t.Fatalf("unexpected designer slugs %v (%v)", slugs, err)
	}
}
