package infra

// storage.go: local disk store for uploaded documents.
// Files land in <root>/documents as <unix-ms>-<random><ext>. Bytes are
// written to a temp file, fsynced, renamed, and the directory fsynced, so a
// committed metadata row never points at a half-written or unlinked file.

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const documentsSubdir = "documents"

// StoredFile describes a file persisted by DocumentStore.
type StoredFile struct {
	Filename string
	Path     string
	Size     int64
}

// DiskFile is one entry returned by List.
type DiskFile struct {
	Filename string
	Path     string
	ModTime  time.Time
}

// DocumentStore persists uploaded documents on local disk.
type DocumentStore struct {
	dir     string
	now     func() time.Time
	syncDir func(dir string) error
}

// NewDocumentStore roots the store at uploadDir/documents. The directory is
// created lazily on the first Save.
func NewDocumentStore(uploadDir string) *DocumentStore {
	return &DocumentStore{dir: filepath.Join(uploadDir, documentsSubdir), now: time.Now, syncDir: syncDir}
}

// Dir returns the directory holding the stored files.
func (s *DocumentStore) Dir() string { return s.dir }

// Save copies r to a newly generated filename that keeps the extension of originalName.
func (s *DocumentStore) Save(originalName string, r io.Reader) (StoredFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("storage: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("storage: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	size, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return StoredFile{}, fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return StoredFile{}, fmt.Errorf("storage: close: %w", err)
	}

	name := s.generateName(originalName)
	dest := filepath.Join(s.dir, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return StoredFile{}, fmt.Errorf("storage: rename: %w", err)
	}
	if err := s.syncDir(s.dir); err != nil {
		_ = os.Remove(dest)
		return StoredFile{}, fmt.Errorf("storage: fsync dir: %w", err)
	}

	return StoredFile{Filename: name, Path: dest, Size: size}, nil
}

// syncDir flushes directory entries so a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *DocumentStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

// List returns the stored files, skipping temp files and subdirectories.
// A missing directory yields an empty list.
func (s *DocumentStore) List() ([]DiskFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: list: %w", err)
	}

	files := make([]DiskFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".upload-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, DiskFile{
			Filename: e.Name(),
			Path:     filepath.Join(s.dir, e.Name()),
			ModTime:  info.ModTime(),
		})
	}
	return files, nil
}

func (s *DocumentStore) generateName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}
