package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore writes containers as directories and notes as <name>.md files
// under a root directory. This is the layout Obsidian-style vaults read.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at dir. The directory is created
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the output root directory
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) dirPath(dir Path) string {
	parts := append([]string{s.root}, dir...)
	return filepath.Join(parts...)
}

func (s *FileStore) notePath(ref Ref) string {
	return filepath.Join(s.dirPath(ref.Dir), ref.Name+".md")
}

// Exists reports whether the note file exists
func (s *FileStore) Exists(ctx context.Context, ref Ref) (bool, error) {
	_, err := os.Stat(s.notePath(ref))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, wrapErr("exists", ref.String(), err)
}

// Create creates the container directory and its parents
func (s *FileStore) Create(ctx context.Context, dir Path) error {
	return wrapErr("create", dir.String(), os.MkdirAll(s.dirPath(dir), 0755))
}

// ReadBody returns the note content, "" when missing
func (s *FileStore) ReadBody(ctx context.Context, ref Ref) (string, error) {
	data, err := os.ReadFile(s.notePath(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", wrapErr("read", ref.String(), err)
	}
	return string(data), nil
}

// AppendLine appends line and a newline, creating the note if needed
func (s *FileStore) AppendLine(ctx context.Context, ref Ref, line string) (err error) {
	if err := os.MkdirAll(s.dirPath(ref.Dir), 0755); err != nil {
		return wrapErr("append", ref.String(), err)
	}

	f, err := os.OpenFile(s.notePath(ref), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return wrapErr("append", ref.String(), err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = wrapErr("append", ref.String(), closeErr)
		}
	}()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return wrapErr("append", ref.String(), err)
	}
	return nil
}

// WriteBody replaces the note content
func (s *FileStore) WriteBody(ctx context.Context, ref Ref, content string) error {
	if err := os.MkdirAll(s.dirPath(ref.Dir), 0755); err != nil {
		return wrapErr("write", ref.String(), err)
	}
	return wrapErr("write", ref.String(), os.WriteFile(s.notePath(ref), []byte(content), 0644))
}
