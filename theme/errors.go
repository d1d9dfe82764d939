package theme

import "errors"

var (
	// ErrParse is matched by every JSON validation failure.
	ErrParse = errors.New("failed to parse theme json")
	// ErrJSONSyntax is returned when the text is not valid JSON.
	ErrJSONSyntax = errors.New("malformed json")
	// ErrShapeMismatch is returned when valid JSON does not have the expected shape.
	ErrShapeMismatch = errors.New("json does not match expected shape")

	// ErrThemeNotFound is returned when a folder is not present under the themes root.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrInvalidConfig is returned when config.json cannot be read or validated.
	ErrInvalidConfig = errors.New("failed to parse theme config")
	// ErrInvalidFieldDefinitions is returned when the role's field file cannot be read or validated.
	ErrInvalidFieldDefinitions = errors.New("failed to parse theme field definitions")
	// ErrCustomValues is returned when user-supplied custom values are rejected.
	ErrCustomValues = errors.New("failed to parse custom values")
	// ErrUnknownRole is returned by ParseRole for names other than settings or templates.
	ErrUnknownRole = errors.New("unknown theme role")
)
