// Package schema declares the content model consumed by the hosted CMS.
//
// Declarations are plain data. The CMS performs validation and storage; the
// helpers here apply the same rules to fixtures and the local mirror so that
// both agree on what a publishable document is.
package schema

import "strings"

// Field types understood by the CMS.
const (
	TypeString    = "string"
	TypeSlug      = "slug"
	TypeDatetime  = "datetime"
	TypeDate      = "date"
	TypeNumber    = "number"
	TypeReference = "reference"
	TypeArray     = "array"
	TypeColor     = "color"
	TypeImage     = "image"
	TypeText      = "text"
	TypeURL       = "url"
	TypeBlock     = "block"

	TypeSingleImage  = "singleImage"
	TypeGallery      = "gallery"
	TypeBlockContent = "blockContent"
)

// InitialNow marks a datetime field whose initial value is the creation time.
const InitialNow = "now()"

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Rule is the validation attached to a field.
type Rule struct {
	Required bool     `json:"required,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// TypeRef names a member type of an array or a reference target.
type TypeRef struct {
	Type string   `json:"type"`
	To   []string `json:"to,omitempty"`
}

// SlugOptions configures slug generation.
type SlugOptions struct {
	Source    string `json:"source"`
	MaxLength int    `json:"maxLength"`
}

// Field is one entry of a document or object declaration.
type Field struct {
	Name         string       `json:"name"`
	Title        string       `json:"title,omitempty"`
	Type         string       `json:"type"`
	Description  string       `json:"description,omitempty"`
	Group        string       `json:"group,omitempty"`
	Fieldset     string       `json:"fieldset,omitempty"`
	To           []string     `json:"to,omitempty"`
	Of           []TypeRef    `json:"of,omitempty"`
	Slug         *SlugOptions `json:"options,omitempty"`
	InitialValue string       `json:"initialValue,omitempty"`
	Validation   Rule         `json:"validation"`
}

// Group is a tab in the editing UI.
type Group struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Fieldset visually groups fields, optionally in columns.
type Fieldset struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Columns int    `json:"columns,omitempty"`
}

// OrderBy is one sort key of an ordering.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
	// MissingLast sorts documents without a value after every dated one,
	// whatever the direction.
	MissingLast bool `json:"missingLast,omitempty"`
}

// Ordering is a named sort order offered to editors and to the website.
type Ordering struct {
	Title string    `json:"title"`
	Name  string    `json:"name"`
	By    []OrderBy `json:"by"`
}

// GROQ renders the ordering as the argument of a GROQ order() call.
func (o Ordering) GROQ() string {
	parts := make([]string, 0, len(o.By))
	for _, by := range o.By {
		if by.MissingLast {
			parts = append(parts, "defined("+by.Field+") desc")
		}
		parts = append(parts, by.Field+" "+normalizeDirection(by.Direction))
	}
	return strings.Join(parts, ", ")
}

// Columns renders the ordering as SQL ORDER BY terms for the local mirror.
func (o Ordering) Columns() []string {
	columns := make([]string, 0, len(o.By))
	for _, by := range o.By {
		if by.MissingLast {
			column := ColumnName(by.Field)
			columns = append(columns, "("+column+" IS NULL OR "+column+" = '') ASC")
		}
		columns = append(columns, ColumnName(by.Field)+" "+strings.ToUpper(normalizeDirection(by.Direction)))
	}
	return columns
}

func normalizeDirection(direction string) string {
	if strings.EqualFold(strings.TrimSpace(direction), Desc) {
		return Desc
	}
	return Asc
}

// Preview selects the fields shown in document lists.
type Preview struct {
	Select map[string]string `json:"select"`
}

// Document is a top-level, independently stored content type.
type Document struct {
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	Groups    []Group    `json:"groups,omitempty"`
	Fieldsets []Fieldset `json:"fieldsets,omitempty"`
	Fields    []Field    `json:"fields"`
	Preview   *Preview   `json:"preview,omitempty"`
	Orderings []Ordering `json:"orderings,omitempty"`
}

// Field looks up a field declaration by name.
func (d Document) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Ordering looks up a named ordering.
func (d Document) Ordering(name string) (Ordering, bool) {
	for _, ordering := range d.Orderings {
		if ordering.Name == name {
			return ordering, true
		}
	}
	return Ordering{}, false
}

// OrderingNames lists the declared orderings in declaration order.
func (d Document) OrderingNames() []string {
	names := make([]string, 0, len(d.Orderings))
	for _, ordering := range d.Orderings {
		names = append(names, ordering.Name)
	}
	return names
}

// ColumnName maps a camelCase field name to its snake_case column.
func ColumnName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func minimum(value float64) *float64 {
	return &value
}
