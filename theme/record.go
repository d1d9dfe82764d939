package theme

import (
	"encoding/json"
	"fmt"

	"themeplane/model"
)

// Record is a fully validated theme. Records are only built by
// Repository.Load and are never modified afterwards; accessors return copies.
type Record struct {
	folder string
	path   string
	role   Role
	config model.ThemeConfig
	fields []model.FieldDefinition
}

// Folder returns the folder name the theme was loaded from.
func (r *Record) Folder() string { return r.folder }

// Path returns the absolute path of the theme folder.
func (r *Record) Path() string { return r.path }

// Role returns the role whose field file was loaded.
func (r *Record) Role() Role { return r.role }

// Config returns the theme metadata.
func (r *Record) Config() model.ThemeConfig {
	cfg := r.config
	cfg.Authors = append([]model.Author(nil), r.config.Authors...)
	return cfg
}

// Fields returns the field definitions in file order.
func (r *Record) Fields() []model.FieldDefinition {
	out := make([]model.FieldDefinition, len(r.fields))
	for i, f := range r.fields {
		f.Attributes = cloneObject(f.Attributes)
		f.Value = cloneValue(f.Value)
		out[i] = f
	}
	return out
}

// Defaults maps each field name to its declared value. Fields without a
// value, or with a null value, are left out.
func (r *Record) Defaults() map[string]any {
	defaults := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		if f.Value == nil {
			continue
		}
		defaults[f.Name] = cloneValue(f.Value)
	}
	return defaults
}

// ParseCustomValues validates user-supplied JSON as custom values. The
// result is not merged with Defaults; see Resolve and MergeValues.
func (r *Record) ParseCustomValues(text string) (model.CustomValues, error) {
	return ParseCustomValues(text)
}

// Resolve merges custom values over the theme's defaults for every declared
// field. Custom keys that name no field are dropped.
func (r *Record) Resolve(custom model.CustomValues) map[string]any {
	merged := MergeValues(r.Defaults(), custom)
	for key := range merged {
		if !r.hasField(key) {
			delete(merged, key)
		}
	}
	return merged
}

func (r *Record) hasField(name string) bool {
	for _, f := range r.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the record for API responses.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Folder string                  `json:"folder"`
		Role   Role                    `json:"role"`
		Config model.ThemeConfig       `json:"config"`
		Fields []model.FieldDefinition `json:"fields"`
	}{
		Folder: r.folder,
		Role:   r.role,
		Config: r.Config(),
		Fields: r.Fields(),
	})
}

// ParseCustomValues validates text against the custom values shape.
func ParseCustomValues(text string) (model.CustomValues, error) {
	custom, err := SafeJSONParse(text, IsCustomValues)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCustomValues, err)
	}
	return custom, nil
}

// MergeValues overlays custom on defaults. A custom value wins when its key
// is present and not null; otherwise the default is kept. Keys present in
// neither map are absent from the result.
func MergeValues(defaults map[string]any, custom model.CustomValues) map[string]any {
	merged := make(map[string]any, len(defaults)+len(custom))
	for key, value := range defaults {
		if value != nil {
			merged[key] = value
		}
	}
	for key, value := range custom {
		if value != nil {
			merged[key] = value
		}
	}
	return merged
}

// cloneValue deep-copies a decoded JSON value so nested objects and arrays
// are not shared with the record.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneObject(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}
