// Package cmstest provides an in-memory content source for tests.
package cmstest

import (
	"context"
	"sort"
	"sync"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/schema"
)

// Source serves fixed records and designers. Set Err to make every query fail.
type Source struct {
	mu        sync.Mutex
	records   map[string]content.Record
	designers map[string]content.Designer
	err       error
	calls     map[string]int
}

var _ cms.Source = (*Source)(nil)

// New returns a source holding records keyed by slug.
func New(records ...content.Record) *Source {
	s := &Source{
		records:   make(map[string]content.Record),
		designers: make(map[string]content.Designer),
		calls:     make(map[string]int),
	}
	for _, rec := range records {
		s.records[rec.Slug] = rec
	}
	return s
}

// Put adds or replaces a record.
func (s *Source) Put(rec content.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Slug] = rec
}

// PutDesigner adds or replaces a designer.
func (s *Source) PutDesigner(d content.Designer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designers[d.Slug] = d
}

// Fail makes subsequent queries return err; nil restores normal behaviour.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls reports how often a query was issued.
func (s *Source) Calls(query string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[query]
}

func (s *Source) enter(query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[query]++
	return s.err
}

func (s *Source) Slugs(_ context.Context, docType string) ([]string, error) {
	if err := s.enter("slugs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var slugs []string
	switch docType {
	case schema.RecordType:
		for slug := range s.records {
			if slug != "" {
				slugs = append(slugs, slug)
			}
		}
	case schema.DesignerType:
		for slug := range s.designers {
			if slug != "" {
				slugs = append(slugs, slug)
			}
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (s *Source) Record(_ context.Context, slug string) (content.Record, error) {
	if err := s.enter("record"); err != nil {
		return content.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[slug], nil
}

func (s *Source) Records(_ context.Context, ordering string) ([]content.Record, error) {
	if err := s.enter("records"); err != nil {
		return nil, err
	}
	o, ok := schema.Record.Ordering(ordering)
	if !ok {
		return nil, cms.ErrUnknownOrdering
	}

	s.mu.Lock()
	records := make([]content.Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		for _, by := range o.By {
			a, b := sortKey(records[i], by.Field), sortKey(records[j], by.Field)
			if a == b {
				continue
			}
			if by.MissingLast && (a == "" || b == "") {
				return b == ""
			}
			if by.Direction == schema.Desc {
				return a > b
			}
			return a < b
		}
		return records[i].Slug < records[j].Slug
	})
	return records, nil
}

func sortKey(rec content.Record, field string) string {
	switch field {
	case "artworkDate":
		return rec.ArtworkDate
	case "publishedAt":
		if rec.PublishedAt.IsZero() {
			return ""
		}
		return rec.PublishedAt.UTC().Format("2006-01-02T15:04:05.000000000Z")
	default:
		return rec.Slug
	}
}

func (s *Source) Designer(_ context.Context, slug string) (content.Designer, error) {
	if err := s.enter("designer"); err != nil {
		return content.Designer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	designer, ok := s.designers[slug]
	if !ok {
		return content.Designer{}, nil
	}
	designer.Records = nil
	for _, rec := range s.records {
		if rec.Designer != nil && rec.Designer.Slug == slug {
			designer.Records = append(designer.Records, rec)
		}
	}
	sort.Slice(designer.Records, func(i, j int) bool {
		return designer.Records[i].PublishedAt.After(designer.Records[j].PublishedAt)
	})
	return designer, nil
}
