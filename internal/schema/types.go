package schema

// Referenced document types.
const (
	DesignerType = "designer"
	TagType      = "tag"
	TypefaceType = "typeface"
)

// Designer credits the person behind a record.
var Designer = Document{
	Name:  DesignerType,
	Title: "Designer",
	Type:  "document",
	Fields: []Field{
		{Name: "firstName", Title: "First name", Type: TypeString},
		{Name: "lastName", Title: "Last name", Type: TypeString, Validation: Rule{Required: true}},
		{
			Name:       "slug",
			Type:       TypeSlug,
			Slug:       &SlugOptions{Source: "lastName", MaxLength: 96},
			Validation: Rule{Required: true},
		},
		{Name: "bio", Type: TypeBlockContent},
	},
	Preview: &Preview{Select: map[string]string{"title": "lastName", "subtitle": "firstName"}},
}

// Tag is a subject label.
var Tag = Document{
	Name:  TagType,
	Title: "Tag",
	Type:  "document",
	Fields: []Field{
		{Name: "title", Type: TypeString, Validation: Rule{Required: true}},
		{
			Name:       "slug",
			Type:       TypeSlug,
			Slug:       &SlugOptions{Source: "title", MaxLength: 96},
			Validation: Rule{Required: true},
		},
	},
}

// Typeface is a typeface seen on records.
var Typeface = Document{
	Name:  TypefaceType,
	Title: "Typeface",
	Type:  "document",
	Fields: []Field{
		{Name: "title", Type: TypeString, Validation: Rule{Required: true}},
		{
			Name:       "slug",
			Type:       TypeSlug,
			Slug:       &SlugOptions{Source: "title", MaxLength: 96},
			Validation: Rule{Required: true},
		},
		{Name: "foundry", Type: TypeString},
	},
}

// ObjectType is a reusable, embedded (not independently stored) type.
type ObjectType struct {
	Name   string    `json:"name"`
	Title  string    `json:"title"`
	Type   string    `json:"type"`
	Of     []TypeRef `json:"of,omitempty"`
	Fields []Field   `json:"fields,omitempty"`
}

// SingleImage is an image with alternative text and hotspot cropping.
var SingleImage = ObjectType{
	Name:  TypeSingleImage,
	Title: "Image",
	Type:  TypeImage,
	Fields: []Field{
		{Name: "alt", Title: "Alternative text", Type: TypeString},
		{Name: "caption", Type: TypeString},
	},
}

// Gallery is an ordered list of images.
var Gallery = ObjectType{
	Name:  TypeGallery,
	Title: "Gallery",
	Type:  TypeArray,
	Of:    []TypeRef{{Type: TypeSingleImage}},
}

// BlockContent is the rich-text type: paragraphs, embedded images and markdown snippets.
var BlockContent = ObjectType{
	Name:  TypeBlockContent,
	Title: "Block Content",
	Type:  TypeArray,
	Of: []TypeRef{
		{Type: TypeBlock},
		{Type: TypeImage},
		{Type: "markdown"},
	},
}

// Set is the full content model.
type Set struct {
	Documents []Document   `json:"documents"`
	Objects   []ObjectType `json:"objects"`
}

// Registry returns every declared type.
func Registry() Set {
	return Set{
		Documents: []Document{Record, Designer, Tag, Typeface},
		Objects:   []ObjectType{SingleImage, Gallery, BlockContent},
	}
}

// Lookup finds a document type by name.
func (s Set) Lookup(name string) (Document, bool) {
	for _, doc := range s.Documents {
		if doc.Name == name {
			return doc, true
		}
	}
	return Document{}, false
}
