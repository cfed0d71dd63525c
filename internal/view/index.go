package view

import (
	"net/url"
	"strconv"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/schema"
)

// DefaultPerPage is the number of cards on an index page.
const DefaultPerPage = 24

// Card is a record teaser on listing pages.
type Card struct {
	Title    string
	URL      string
	Thumb    string
	Alt      string
	Designer string
	Year     string
}

// OrderingOption is one entry of the sort selector.
type OrderingOption struct {
	Name   string
	Title  string
	URL    string
	Active bool
}

// Index is the paginated record listing.
type Index struct {
	Cards      []Card
	Orderings  []OrderingOption
	Ordering   string
	Page       int
	TotalPages int
	Total      int
	PrevURL    string
	NextURL    string
}

// Card builds the teaser of a record.
func (v *Views) Card(rec content.Record) Card {
	card := Card{
		Title: rec.Title,
		URL:   ItemPath(rec.Slug),
	}
	if rec.MainImage != nil {
		if img, ok := v.galleryImage(*rec.MainImage, thumbWidth); ok {
			card.Thumb = img.Thumb
			card.Alt = img.Alt
		}
	}
	if card.Alt == "" {
		card.Alt = rec.Title
	}
	if rec.Designer != nil {
		card.Designer = rec.Designer.Name()
	}
	if t, ok := rec.ArtworkTime(); ok {
		card.Year = strconv.Itoa(t.Year())
	}
	return card
}

// IndexPage lists published records already sorted under ordering, showing the
// requested page.
func (v *Views) IndexPage(records []content.Record, ordering string, page, perPage int) Page {
	perPage = normalizePerPage(perPage, DefaultPerPage)

	published := make([]content.Record, 0, len(records))
	for _, rec := range records {
		if rec.Published() {
			published = append(published, rec)
		}
	}

	totalPages := calculateTotalPages(len(published), perPage)
	page = normalizePage(page)
	if page > totalPages {
		page = totalPages
	}

	index := &Index{
		Ordering:   ordering,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(published),
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(published) {
		end = len(published)
	}
	for _, rec := range published[start:end] {
		index.Cards = append(index.Cards, v.Card(rec))
	}

	for _, o := range schema.Record.Orderings {
		index.Orderings = append(index.Orderings, OrderingOption{
			Name:   o.Name,
			Title:  o.Title,
			URL:    indexURL(o.Name, 1),
			Active: o.Name == ordering,
		})
	}
	if page > 1 {
		index.PrevURL = indexURL(ordering, page-1)
	}
	if page < totalPages {
		index.NextURL = indexURL(ordering, page+1)
	}

	result := v.page("", "/")
	result.Index = index
	return result
}

func indexURL(ordering string, page int) string {
	values := url.Values{}
	values.Set("order", ordering)
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	return "/?" + values.Encode()
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	return perPage
}

func calculateTotalPages(total, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
