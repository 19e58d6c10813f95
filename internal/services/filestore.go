package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/courtdesk/causelist/internal/apperrors"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/metrics"
)

// FileStore owns the output folder that generated cause lists are written to
// and served from.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted at its
// absolute path.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output folder %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output folder %q: %w", abs, err)
	}
	return &FileStore{dir: abs}, nil
}

// Dir returns the absolute output folder.
func (s *FileStore) Dir() string {
	return s.dir
}

// WriteFile writes name atomically: content goes to a temporary file in the
// same folder which is renamed once write returns without error.
func (s *FileStore) WriteFile(name string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// WriteJSON stores v as indented UTF-8 JSON.
func (s *FileStore) WriteJSON(name string, v any) error {
	return s.WriteFile(name, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	})
}

// Resolve maps a requested download name to a path inside the output folder.
// Names with separators or "..", extensions other than .pdf/.json, paths that
// resolve outside the folder and missing files are all rejected.
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", &apperrors.ErrInvalidFilename{Filename: name, Reason: apperrors.ReasonPathTraversal}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".pdf" && ext != ".json" {
		return "", &apperrors.ErrInvalidFilename{Filename: name, Reason: apperrors.ReasonFileType}
	}

	path := filepath.Join(s.dir, name)
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.NewNotFoundError("file", name)
		}
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	root, err := filepath.EvalSymlinks(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output folder: %w", err)
	}
	if !strings.HasPrefix(real, root+string(filepath.Separator)) {
		return "", &apperrors.ErrAccessDenied{Path: real}
	}

	info, err := os.Stat(real)
	if err != nil || info.IsDir() {
		return "", apperrors.NewNotFoundError("file", name)
	}
	return real, nil
}

// Open resolves name and opens it for reading. The caller closes the file.
func (s *FileStore) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NewNotFoundError("file", name)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return f, info, nil
}

// Sweep deletes generated files last modified more than maxAge before now and
// returns how many were removed. A non-positive maxAge disables the sweep.
func (s *FileStore) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list output folder: %w", err)
	}

	logger := config.GetLogger()
	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to remove expired file")
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.FilesSweptTotal.Add(float64(removed))
		logger.Info().Int("removed", removed).Dur("maxAge", maxAge).Msg("Removed expired cause list files")
	}
	return removed, nil
}
