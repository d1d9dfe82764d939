package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"themeplane/theme"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "themeplane.toml"

type Config struct {
	ThemesDir      string   `toml:"themes_dir"`
	Role           string   `toml:"role"`
	ListenAddr     string   `toml:"listen_addr"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

func Default() Config {
	return Config{
		ThemesDir:  filepath.Join("themes", "theme_files"),
		Role:       theme.RoleSettings.Name,
		ListenAddr: ":8080",
	}
}

// Load reads the config at path. A missing file yields Default().
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	cfg := Default()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	def := Default()
	if strings.TrimSpace(cfg.ThemesDir) == "" {
		cfg.ThemesDir = def.ThemesDir
	}
	if strings.TrimSpace(cfg.Role) == "" {
		cfg.Role = def.Role
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used to build a repository.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ThemesDir) == "" {
		return errors.New("themes_dir must not be empty")
	}
	if _, err := theme.ParseRole(c.Role); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	return nil
}

// ThemeRole returns the role named by the config.
func (c Config) ThemeRole() (theme.Role, error) {
	return theme.ParseRole(c.Role)
}

// Save writes cfg to path through a temporary file. Concurrent writers are
// serialised with a lock file next to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
