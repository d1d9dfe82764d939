package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"themeplane/theme"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load() = %+v, want %+v", cfg, Default())
	}
	if cfg.ThemesDir != filepath.Join("themes", "theme_files") {
		t.Fatalf("default ThemesDir = %q", cfg.ThemesDir)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", FileName)
	want := Config{
		ThemesDir:      "/srv/themes",
		Role:           "templates",
		ListenAddr:     "127.0.0.1:9000",
		AllowedOrigins: []string{"https://example.com"},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temporary file left behind: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}

	role, err := got.ThemeRole()
	if err != nil || role != theme.RoleTemplates {
		t.Fatalf("ThemeRole() = %v, %v", role, err)
	}
}

func TestLoadFillsMissingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("listen_addr = \":9090\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	def := Default()
	if cfg.ListenAddr != ":9090" || cfg.ThemesDir != def.ThemesDir || cfg.Role != def.Role {
		t.Fatalf("Load() = %+v", cfg)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed toml", content: "themes_dir = \n"},
		{name: "unknown role", content: "role = \"layouts\"\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("Load() expected error for %q", tt.content)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() unexpected error: %v", err)
	}

	cfg.Role = "layouts"
	if err := cfg.Validate(); !errors.Is(err, theme.ErrUnknownRole) {
		t.Fatalf("Validate() error = %v, want ErrUnknownRole", err)
	}

	cfg = Default()
	cfg.ThemesDir = "  "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() expected error for blank themes_dir")
	}
}
