package model

// Author credits one maintainer of a theme.
type Author struct {
	Name          string `json:"name"`
	GithubProfile string `json:"github_profile"`
}

// ThemeConfig is the metadata stored in a theme's config.json.
type ThemeConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Authors     []Author `json:"authors"`
}

// FieldDefinition declares one user-configurable field of a theme.
//
// Value holds the declared default. A nil Value means the field has no
// default, whether the key was absent or explicitly null in the source file.
type FieldDefinition struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	Value      any            `json:"value,omitempty"`
}

// CustomValues maps field names to user-supplied scalar overrides.
// Values are string, json.Number, bool or nil.
type CustomValues map[string]any

// CatalogEntry is the projection of a theme used by listing and selection UIs.
type CatalogEntry struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}
