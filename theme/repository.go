package theme

import (
	"context"
	"fmt"
	"log"
	"slices"

	"themeplane/model"
	"themeplane/storage"
)

// Repository loads and validates themes from a directory of theme folders.
// It keeps no state between calls: every operation re-reads the disk.
type Repository struct {
	store *storage.Store
	role  Role
}

// NewRepository creates a repository over root that reads role's field file.
func NewRepository(root string, role Role) *Repository {
	return &Repository{
		store: storage.New(root),
		role:  role,
	}
}

// Root returns the themes root directory.
func (r *Repository) Root() string {
	return r.store.BaseDir()
}

// Role returns the role this repository loads.
func (r *Repository) Role() Role {
	return r.role
}

// Folders returns every entry name under the themes root.
func (r *Repository) Folders(ctx context.Context) ([]string, error) {
	return r.store.ListFolders(ctx)
}

// Exists reports whether folder is present under the themes root.
func (r *Repository) Exists(ctx context.Context, folder string) (bool, error) {
	folders, err := r.store.ListFolders(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(folders, folder), nil
}

// Config reads and validates a theme's config.json.
func (r *Repository) Config(ctx context.Context, folder string) (model.ThemeConfig, error) {
	text, err := r.store.ReadFile(ctx, folder, ConfigFile)
	if err != nil {
		return model.ThemeConfig{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, folder, err)
	}
	cfg, err := SafeJSONParse(text, IsConfig)
	if err != nil {
		return model.ThemeConfig{}, fmt.Errorf("%w: %s/%s: %w", ErrInvalidConfig, folder, ConfigFile, err)
	}
	return cfg, nil
}

// Fields reads and validates the role's field file for a theme.
func (r *Repository) Fields(ctx context.Context, folder string) ([]model.FieldDefinition, error) {
	text, err := r.store.ReadFile(ctx, folder, r.role.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFieldDefinitions, folder, err)
	}
	fields, err := SafeJSONParse(text, IsFieldDefinitions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrInvalidFieldDefinitions, folder, r.role.FileName, err)
	}
	return fields, nil
}

// Load builds a Record for folder. The folder must be listed under the
// themes root and both its config and field files must validate; otherwise
// no record is returned.
func (r *Repository) Load(ctx context.Context, folder string) (*Record, error) {
	if err := storage.ValidateName(folder); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThemeNotFound, err)
	}

	exists, err := r.Exists(ctx, folder)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w with name %s", ErrThemeNotFound, folder)
	}

	cfg, err := r.Config(ctx, folder)
	if err != nil {
		return nil, err
	}
	fields, err := r.Fields(ctx, folder)
	if err != nil {
		return nil, err
	}
	path, err := r.store.FolderPath(folder)
	if err != nil {
		return nil, err
	}

	return &Record{
		folder: folder,
		path:   path,
		role:   r.role,
		config: cfg,
		fields: fields,
	}, nil
}

// ListAll returns a catalog entry for every folder whose config validates,
// in listing order. Folders with a missing or invalid config are skipped.
func (r *Repository) ListAll(ctx context.Context) ([]model.CatalogEntry, error) {
	folders, err := r.store.ListFolders(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]model.CatalogEntry, 0, len(folders))
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cfg, err := r.Config(ctx, folder)
		if err != nil {
			log.Printf("theme: skipping %s: %v", folder, err)
			continue
		}
		entries = append(entries, model.CatalogEntry{Value: folder, Name: cfg.Name})
	}

	return entries, nil
}
