// Package cms queries content documents from the hosted CMS.
package cms

import (
	"context"
	"errors"

	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/schema"
)

var (
	ErrRequest         = errors.New("cms request failed")
	ErrResponse        = errors.New("cms returned an error")
	ErrUnknownOrdering = errors.New("unknown ordering")
)

// Source is anything that can answer the site's content queries. Absent documents
// are returned zero-valued with a nil error.
type Source interface {
	Slugs(ctx context.Context, docType string) ([]string, error)
	Record(ctx context.Context, slug string) (content.Record, error)
	Records(ctx context.Context, ordering string) ([]content.Record, error)
	Designer(ctx context.Context, slug string) (content.Designer, error)
}

const recordProjection = `{
  _id,
  title,
  "slug": slug.current,
  publishedAt,
  mainImage,
  images,
  "designer": designer->{_id, firstName, lastName, "slug": slug.current},
  "tags": tags[]->{_id, title, "slug": slug.current},
  "typefaces": typefaces[]->{_id, title, "slug": slug.current},
  width,
  height,
  artworkDate,
  color{hex, alpha},
  notes
}`

const (
	slugsQuery  = `*[_type == $type && defined(slug.current)][].slug.current`
	recordQuery = `*[_type == "` + schema.RecordType + `" && slug.current == $slug][0]` + recordProjection
)

// RecordsQuery lists every record with a slug under the named ordering.
func RecordsQuery(ordering string) (string, error) {
	o, ok := schema.Record.Ordering(ordering)
	if !ok {
		return "", ErrUnknownOrdering
	}
	return `*[_type == "` + schema.RecordType + `" && defined(slug.current)] | order(` + o.GROQ() + `)` + recordProjection, nil
}

// DesignerQuery fetches one designer and every record referencing them, newest first.
const DesignerQuery = `*[_type == "` + schema.DesignerType + `" && slug.current == $slug][0]{
  _id,
  firstName,
  lastName,
  "slug": slug.current,
  bio,
  "records": *[_type == "` + schema.RecordType + `" && references(^._id)] | order(publishedAt desc)` + recordProjection + `
}`
