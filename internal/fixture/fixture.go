// Package fixture loads content documents from YAML files for the local mirror.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ephemera/internal/asset"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/schema"
	"gopkg.in/yaml.v3"
)

var ErrUnknownDesigner = errors.New("unknown designer")

// File is the decoded fixture document.
type File struct {
	Designers []map[string]any `yaml:"designers"`
	Records   []map[string]any `yaml:"records"`
}

// Set is the content a fixture file describes.
type Set struct {
	Designers []content.Designer
	Records   []content.Record
}

// Loader turns fixture files into content. Image fields may name a local file
// with a "file" key; those files are registered as assets in AssetDir.
type Loader struct {
	AssetDir string
	Now      func() time.Time
}

// Load reads and converts one fixture file. Every record is validated against
// the record schema after defaults are applied.
func (l Loader) Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Set{}, fmt.Errorf("parse %s: %w", path, err)
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	baseDir := filepath.Dir(path)

	var set Set
	designers := make(map[string]content.Designer, len(file.Designers))
	for i, values := range file.Designers {
		designer, err := convertDesigner(values)
		if err != nil {
			return Set{}, fmt.Errorf("designer %d: %w", i+1, err)
		}
		designers[designer.Slug] = designer
		set.Designers = append(set.Designers, designer)
	}

	for i, values := range file.Records {
		schema.Record.ApplyDefaults(values, now())
		if err := schema.Record.Validate(values); err != nil {
			return Set{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		if err := l.resolveImages(baseDir, values); err != nil {
			return Set{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		rec, err := convertRecord(values, designers)
		if err != nil {
			return Set{}, fmt.Errorf("record %d: %w", i+1, err)
		}
		set.Records = append(set.Records, rec)
	}
	return set, nil
}

func (l Loader) resolveImages(baseDir string, values map[string]any) error {
	if img, ok := values["mainImage"].(map[string]any); ok {
		if err := l.resolveImage(baseDir, img); err != nil {
			return err
		}
	}
	for _, key := range []string{"images", "notes"} {
		items, _ := values[key].([]any)
		for _, item := range items {
			img, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if key == "notes" && img["_type"] != "image" {
				continue
			}
			if err := l.resolveImage(baseDir, img); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l Loader) resolveImage(baseDir string, img map[string]any) error {
	file, _ := img["file"].(string)
	file = strings.TrimSpace(file)
	if file == "" {
		return nil
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, file)
	}

	ref, err := asset.RefFromFile(file)
	if err != nil {
		return fmt.Errorf("image %s: %w", file, err)
	}
	if _, err := asset.Store(l.AssetDir, file, ref); err != nil {
		return fmt.Errorf("store %s: %w", file, err)
	}

	delete(img, "file")
	img["asset"] = map[string]any{"_type": "reference", "_ref": ref.String()}
	return nil
}

func convertDesigner(values map[string]any) (content.Designer, error) {
	schema.Designer.ApplyDefaults(values, time.Now())
	if err := schema.Designer.Validate(values); err != nil {
		return content.Designer{}, err
	}
	values["slug"] = schema.SlugValue(values["slug"])

	var designer content.Designer
	if err := remarshal(values, &designer); err != nil {
		return content.Designer{}, err
	}
	if designer.ID == "" {
		designer.ID = "designer-" + designer.Slug
	}
	return designer, nil
}

func convertRecord(values map[string]any, designers map[string]content.Designer) (content.Record, error) {
	values["slug"] = schema.SlugValue(values["slug"])

	var designer *content.Designer
	if raw, ok := values["designer"]; ok {
		slug, _ := raw.(string)
		d, found := designers[strings.TrimSpace(slug)]
		if !found {
			return content.Record{}, fmt.Errorf("%w: %v", ErrUnknownDesigner, raw)
		}
		designer = &d
	}
	tags := titles(values["tags"])
	typefaces := titles(values["typefaces"])
	delete(values, "designer")
	delete(values, "tags")
	delete(values, "typefaces")

	var rec content.Record
	if err := remarshal(values, &rec); err != nil {
		return content.Record{}, err
	}
	if rec.ID == "" {
		rec.ID = "record-" + rec.Slug
	}
	rec.Designer = designer
	for _, title := range tags {
		slug := schema.Slugify(title, 96)
		rec.Tags = append(rec.Tags, content.Tag{ID: "tag-" + slug, Title: title, Slug: slug})
	}
	for _, title := range typefaces {
		slug := schema.Slugify(title, 96)
		rec.Typefaces = append(rec.Typefaces, content.Typeface{ID: "typeface-" + slug, Title: title, Slug: slug})
	}
	return rec, nil
}

func titles(value any) []string {
	items, _ := value.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if title, ok := item.(string); ok && strings.TrimSpace(title) != "" {
			out = append(out, strings.TrimSpace(title))
		}
	}
	return out
}

// remarshal maps decoded YAML onto the JSON-tagged content types.
func remarshal(values map[string]any, out any) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
