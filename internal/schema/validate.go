package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rule a document breaks.
type ValidationError struct {
	Document string
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, problem := range e.Problems {
		parts = append(parts, problem.Field+": "+problem.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Document, strings.Join(parts, "; "))
}

// Has reports whether the given field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, problem := range e.Problems {
		if problem.Field == field {
			return true
		}
	}
	return false
}

// Validate checks raw document values against the declared rules. It returns
// nil or a *ValidationError.
func (d Document) Validate(values map[string]any) error {
	var problems []FieldError
	for _, field := range d.Fields {
		value, present := values[field.Name]
		if field.Validation.Required && (!present || isEmpty(field, value)) {
			problems = append(problems, FieldError{Field: field.Name, Message: "required"})
			continue
		}
		if !present || value == nil {
			continue
		}
		if field.Type == TypeNumber {
			number, ok := toFloat(value)
			if !ok {
				problems = append(problems, FieldError{Field: field.Name, Message: "must be a number"})
				continue
			}
			if lower := field.Validation.Min; lower != nil && number < *lower {
				problems = append(problems, FieldError{Field: field.Name, Message: fmt.Sprintf("must be at least %g", *lower)})
			}
			if upper := field.Validation.Max; upper != nil && number > *upper {
				problems = append(problems, FieldError{Field: field.Name, Message: fmt.Sprintf("must be at most %g", *upper)})
			}
		}
		if field.Type == TypeDate {
			raw, ok := value.(string)
			if !ok {
				problems = append(problems, FieldError{Field: field.Name, Message: "must be a YYYY-MM-DD date"})
				continue
			}
			if strings.TrimSpace(raw) != "" {
				if _, err := time.Parse(time.DateOnly, strings.TrimSpace(raw)); err != nil {
					problems = append(problems, FieldError{Field: field.Name, Message: "must be a YYYY-MM-DD date"})
				}
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Document: d.Name, Problems: problems}
}

// InitialValues returns the values a freshly created document starts with.
func (d Document) InitialValues(now time.Time) map[string]any {
	values := make(map[string]any)
	for _, field := range d.Fields {
		if field.InitialValue == InitialNow {
			values[field.Name] = now.UTC().Format(time.RFC3339)
		}
	}
	return values
}

// ApplyDefaults fills initial values and derives missing slugs in place.
// Decoded time values of date and datetime fields become their string forms.
func (d Document) ApplyDefaults(values map[string]any, now time.Time) {
	for _, field := range d.Fields {
		t, ok := values[field.Name].(time.Time)
		if !ok {
			continue
		}
		switch field.Type {
		case TypeDate:
			values[field.Name] = t.Format(time.DateOnly)
		case TypeDatetime:
			values[field.Name] = t.UTC().Format(time.RFC3339)
		}
	}
	for key, value := range d.InitialValues(now) {
		if current, ok := values[key]; !ok || current == nil || current == "" {
			values[key] = value
		}
	}
	for _, field := range d.Fields {
		if field.Type != TypeSlug || field.Slug == nil {
			continue
		}
		if SlugValue(values[field.Name]) != "" {
			continue
		}
		source, _ := values[field.Slug.Source].(string)
		if slug := Slugify(source, field.Slug.MaxLength); slug != "" {
			values[field.Name] = map[string]any{"_type": TypeSlug, "current": slug}
		}
	}
}

// SlugValue extracts the current slug from either a plain string or a
// {current: ...} object.
func SlugValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		current, _ := v["current"].(string)
		return strings.TrimSpace(current)
	}
	return ""
}

func isEmpty(field Field, value any) bool {
	if value == nil {
		return true
	}
	switch field.Type {
	case TypeSlug:
		return SlugValue(value) == ""
	case TypeSingleImage, TypeImage:
		img, ok := value.(map[string]any)
		if !ok {
			return true
		}
		if file, _ := img["file"].(string); strings.TrimSpace(file) != "" {
			return false
		}
		asset, ok := img["asset"].(map[string]any)
		if !ok {
			return true
		}
		ref, _ := asset["_ref"].(string)
		return strings.TrimSpace(ref) == ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}
