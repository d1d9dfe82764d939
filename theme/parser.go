package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"themeplane/model"
)

// Guard checks a decoded JSON value against a shape and converts it to T.
// Decoded values use the encoding/json generic types with json.Number for numbers.
type Guard[T any] func(v any) (T, bool)

// SafeJSONParse decodes text as a single JSON value and applies guard to it.
//
// Malformed JSON, including trailing data after the value, yields an error
// matching ErrJSONSyntax. A value the guard rejects yields ErrShapeMismatch.
// Both match ErrParse.
func SafeJSONParse[T any](text string, guard Guard[T]) (T, error) {
	var zero T

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return zero, fmt.Errorf("%w: %w: %v", ErrParse, ErrJSONSyntax, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("%w: %w: unexpected data after top-level value", ErrParse, ErrJSONSyntax)
	}

	parsed, ok := guard(v)
	if !ok {
		return zero, fmt.Errorf("%w: %w", ErrParse, ErrShapeMismatch)
	}
	return parsed, nil
}

// IsConfig accepts an object with string name, description and version and a
// non-empty authors array whose entries carry string name and github_profile.
func IsConfig(v any) (model.ThemeConfig, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.ThemeConfig{}, false
	}

	var cfg model.ThemeConfig
	if cfg.Name, ok = obj["name"].(string); !ok {
		return model.ThemeConfig{}, false
	}
	if cfg.Description, ok = obj["description"].(string); !ok {
		return model.ThemeConfig{}, false
	}
	if cfg.Version, ok = obj["version"].(string); !ok {
		return model.ThemeConfig{}, false
	}

	authors, ok := obj["authors"].([]any)
	if !ok || len(authors) == 0 {
		return model.ThemeConfig{}, false
	}
	cfg.Authors = make([]model.Author, 0, len(authors))
	for _, raw := range authors {
		author, ok := raw.(map[string]any)
		if !ok {
			return model.ThemeConfig{}, false
		}
		name, ok := author["name"].(string)
		if !ok {
			return model.ThemeConfig{}, false
		}
		profile, ok := author["github_profile"].(string)
		if !ok {
			return model.ThemeConfig{}, false
		}
		cfg.Authors = append(cfg.Authors, model.Author{Name: name, GithubProfile: profile})
	}

	return cfg, true
}

// IsFieldDefinitions accepts a non-empty array of objects that each have a
// string type, a string name and an object attributes. The value key is
// optional and not checked.
func IsFieldDefinitions(v any) ([]model.FieldDefinition, bool) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}

	fields := make([]model.FieldDefinition, 0, len(items))
	for _, raw := range items {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, false
		}
		fieldType, ok := obj["type"].(string)
		if !ok {
			return nil, false
		}
		name, ok := obj["name"].(string)
		if !ok {
			return nil, false
		}
		attrs, ok := obj["attributes"].(map[string]any)
		if !ok || attrs == nil {
			return nil, false
		}
		fields = append(fields, model.FieldDefinition{
			Type:       fieldType,
			Name:       name,
			Attributes: attrs,
			Value:      obj["value"],
		})
	}

	return fields, true
}

// IsCustomValues accepts an object whose values are all strings, numbers,
// booleans or null.
func IsCustomValues(v any) (model.CustomValues, bool) {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return nil, false
	}
	for _, value := range obj {
		if !isScalar(value) {
			return nil, false
		}
	}
	return model.CustomValues(obj), true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number, float64:
		return true
	default:
		return false
	}
}
