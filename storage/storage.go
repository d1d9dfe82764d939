// Package storage provides read-only access to the theme files on disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrIO is matched by every failure to list or read the themes root.
	ErrIO = errors.New("theme storage I/O failure")
	// ErrInvalidName is returned for folder or file names that would escape the themes root.
	ErrInvalidName = errors.New("invalid theme path component")
)

// ReadError describes a file that could not be read from a theme folder.
type ReadError struct {
	Folder string
	File   string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read file: %s/%s: %v", e.Folder, e.File, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is reports ReadError as an ErrIO so callers need only one sentinel.
func (e *ReadError) Is(target error) bool { return target == ErrIO }

// Store reads theme folders below a single base directory.
type Store struct {
	baseDir string
}

// New creates a new Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the directory the store reads from.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// FolderPath returns the absolute path of a theme folder.
func (s *Store) FolderPath(folder string) (string, error) {
	if err := ValidateName(folder); err != nil {
		return "", err
	}
	return filepath.Abs(filepath.Join(s.baseDir, folder))
}

// ListFolders returns the names of all entries directly under the base
// directory in the order os.ReadDir reports them. Plain files are included.
func (s *Store) ListFolders(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", ErrIO, s.baseDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// ReadFile returns the contents of <baseDir>/<folder>/<file> as text.
func (s *Store) ReadFile(ctx context.Context, folder, file string) (string, error) {
	if err := ValidateName(folder); err != nil {
		return "", err
	}
	if err := ValidateName(file); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, folder, file))
	if err != nil {
		return "", &ReadError{Folder: folder, File: file, Err: err}
	}
	return string(data), nil
}

// ValidateName rejects names that are not a single path element.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
