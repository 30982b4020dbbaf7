package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./downloads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

// Save writes the given bytes to the provided relative path under the base dir.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	path := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Staged is a file being written that only becomes visible under its final
// name on Commit.
type Staged struct {
	storage *LocalStorage
	file    *os.File
	name    string
	done    bool
}

// Stage opens a hidden temporary file that will be committed as filename.
func (s *LocalStorage) Stage(filename string) (*Staged, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}
	file, err := os.CreateTemp(s.baseDir, "."+name+"-*.part")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	return &Staged{storage: s, file: file, name: name}, nil
}

// Write implements io.Writer.
func (f *Staged) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// ReadFrom streams r into the staged file.
func (f *Staged) ReadFrom(r io.Reader) (int64, error) {
	return io.Copy(f.file, r)
}

// Commit moves the staged content under a name that does not clobber an
// existing file and returns the final path.
func (f *Staged) Commit() (string, error) {
	if f.done {
		return "", fmt.Errorf("staged file %s already released", f.name)
	}
	f.done = true
	tmp := f.file.Name()
	if err := f.file.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	target := f.storage.available(f.name)
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit %s: %w", f.name, err)
	}
	return target, nil
}

// Discard drops the staged content. It is a no-op after Commit.
func (f *Staged) Discard() error {
	if f.done {
		return nil
	}
	f.done = true
	tmp := f.file.Name()
	_ = f.file.Close()
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discard staging file: %w", err)
	}
	return nil
}

// available returns the first of name, "stem (1).ext", "stem (2).ext", ...
// that does not exist yet.
func (s *LocalStorage) available(name string) string {
	candidate := s.resolve(name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = s.resolve(fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func (s *LocalStorage) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(s.baseDir, filename)
}
