package theme

import (
	"fmt"
	"strings"
)

// ConfigFile is the metadata file every theme folder must contain.
const ConfigFile = "config.json"

// Role selects which field-definition file a Repository reads for each theme.
type Role struct {
	Name     string
	FileName string
}

var (
	// RoleSettings reads user settings from settings.json.
	RoleSettings = Role{Name: "settings", FileName: "settings.json"}
	// RoleTemplates reads template fields from template.json.
	RoleTemplates = Role{Name: "templates", FileName: "template.json"}
)

// Roles lists every known role.
var Roles = [...]Role{RoleSettings, RoleTemplates}

// ParseRole returns the role with the given name. Matching ignores case and
// surrounding whitespace.
func ParseRole(name string) (Role, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	for _, role := range Roles {
		if role.Name == norm {
			return role, nil
		}
	}
	return Role{}, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

func (r Role) String() string {
	return r.Name
}

// MarshalText encodes a role as its name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.Name), nil
}
