package content

// Block is one entry of a rich-text field. The _type tag decides which of the
// remaining fields are meaningful: "block" uses Style/ListItem/Children/MarkDefs,
// "image" uses Asset/Alt/Caption, "markdown" uses Markdown.
type Block struct {
	Type     string     `json:"_type" yaml:"_type"`
	Key      string     `json:"_key,omitempty" yaml:"_key,omitempty"`
	Style    string     `json:"style,omitempty" yaml:"style,omitempty"`
	ListItem string     `json:"listItem,omitempty" yaml:"listItem,omitempty"`
	Level    int        `json:"level,omitempty" yaml:"level,omitempty"`
	Children []Span     `json:"children,omitempty" yaml:"children,omitempty"`
	MarkDefs []MarkDef  `json:"markDefs,omitempty" yaml:"markDefs,omitempty"`
	Asset    *Reference `json:"asset,omitempty" yaml:"asset,omitempty"`
	Alt      string     `json:"alt,omitempty" yaml:"alt,omitempty"`
	Caption  string     `json:"caption,omitempty" yaml:"caption,omitempty"`
	Crop     *Crop      `json:"crop,omitempty" yaml:"crop,omitempty"`
	Markdown string     `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Image views an image block as an Image value.
func (b Block) Image() Image {
	return Image{Type: b.Type, Key: b.Key, Asset: b.Asset, Alt: b.Alt, Caption: b.Caption, Crop: b.Crop}
}

// Span is a run of text carrying decorator or annotation marks.
type Span struct {
	Type  string   `json:"_type,omitempty" yaml:"_type,omitempty"`
	Key   string   `json:"_key,omitempty" yaml:"_key,omitempty"`
	Text  string   `json:"text" yaml:"text"`
	Marks []string `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// MarkDef defines an annotation referenced from span marks by key.
type MarkDef struct {
	Key  string `json:"_key" yaml:"_key"`
	Type string `json:"_type" yaml:"_type"`
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
}
