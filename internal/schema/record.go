package schema

// Orderings offered for records.
const (
	OrderArtworkDateDesc = "artworkDateDesc"
	OrderArtworkDateAsc  = "artworkDateAsc"
	OrderPublishedAtDesc = "publishedAtDesc"
	OrderPublishedAtAsc  = "publishedAtAsc"
)

// RecordType is the document type name of collection items.
const RecordType = "record"

// Record is a single piece of ephemera.
var Record = Document{
	Name:  RecordType,
	Title: "Record",
	Type:  "document",
	Groups: []Group{
		{Name: "data", Title: "Data"},
		{Name: "images", Title: "Images"},
	},
	Fieldsets: []Fieldset{
		{Name: "dimensions", Title: "Dimensions", Columns: 2},
	},
	Fields: []Field{
		{
			Name:       "title",
			Type:       TypeString,
			Validation: Rule{Required: true},
		},
		{
			Name:       "slug",
			Type:       TypeSlug,
			Slug:       &SlugOptions{Source: "title", MaxLength: 96},
			Validation: Rule{Required: true},
		},
		{
			Name:         "publishedAt",
			Title:        "Published at",
			Type:         TypeDatetime,
			InitialValue: InitialNow,
			Validation:   Rule{Required: true},
		},
		{
			Name:       "mainImage",
			Title:      "Main image",
			Type:       TypeSingleImage,
			Group:      "images",
			Validation: Rule{Required: true},
		},
		{
			Name:  "images",
			Type:  TypeGallery,
			Group: "images",
		},
		{
			Name:  "designer",
			Type:  TypeReference,
			To:    []string{DesignerType},
			Group: "data",
		},
		{
			Name:  "tags",
			Type:  TypeArray,
			Of:    []TypeRef{{Type: TypeReference, To: []string{TagType}}},
			Group: "data",
		},
		{
			Name:  "typefaces",
			Type:  TypeArray,
			Of:    []TypeRef{{Type: TypeReference, To: []string{TypefaceType}}},
			Group: "data",
		},
		{
			Name:        "width",
			Type:        TypeNumber,
			Description: "Width in millimetres",
			Group:       "data",
			Fieldset:    "dimensions",
			Validation:  Rule{Min: minimum(0)},
		},
		{
			Name:        "height",
			Type:        TypeNumber,
			Description: "Height in millimetres",
			Group:       "data",
			Fieldset:    "dimensions",
			Validation:  Rule{Min: minimum(0)},
		},
		{
			Name:  "artworkDate",
			Title: "Artwork date",
			Type:  TypeDate,
			Group: "data",
		},
		{
			Name:  "color",
			Title: "Predominant color",
			Type:  TypeColor,
			Group: "data",
		},
		{
			Name:  "notes",
			Type:  TypeBlockContent,
			Group: "data",
		},
	},
	Preview: &Preview{Select: map[string]string{
		"title": "title",
		"media": "mainImage",
	}},
	Orderings: []Ordering{
		{
			Title: "Artwork Date, New",
			Name:  OrderArtworkDateDesc,
			By:    []OrderBy{{Field: "artworkDate", Direction: Desc, MissingLast: true}},
		},
		{
			Title: "Artwork Date, Old",
			Name:  OrderArtworkDateAsc,
			By:    []OrderBy{{Field: "artworkDate", Direction: Asc, MissingLast: true}},
		},
		{
			Title: "Published At, New",
			Name:  OrderPublishedAtDesc,
			By:    []OrderBy{{Field: "publishedAt", Direction: Desc}},
		},
		{
			Title: "Published At, Old",
			Name:  OrderPublishedAtAsc,
			By:    []OrderBy{{Field: "publishedAt", Direction: Asc}},
		},
	},
}
