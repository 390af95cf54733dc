package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/deusflow/aidaily/internal/daily"
	"github.com/deusflow/aidaily/internal/news"
)

// ErrMissingInput matches every *MissingInputError via errors.Is.
var ErrMissingInput = errors.New("missing input")

// MissingInputError means the artifact a stage depends on does not exist for
// the run date. It stops that stage only.
type MissingInputError struct {
	Date string
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("no input for %s: %s not found", e.Date, e.Path)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// FileStore reads and writes the per-date artifacts. Every write replaces the
// target atomically: readers see the old file or the new one, never a torn one.
// There is no cross-process lock.
type FileStore struct {
	log *slog.Logger
}

func NewFileStore(log *slog.Logger) *FileStore {
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{log: log}
}

// SaveItems overwrites the raw artifact of run.
func (s *FileStore) SaveItems(run daily.Run, items []news.Item) error {
	if items == nil {
		items = []news.Item{}
	}
	return s.WriteJSON(run.RawPath(), items)
}

// LoadItems reads the raw artifact of run.
func (s *FileStore) LoadItems(run daily.Run) ([]news.Item, error) {
	var items []news.Item
	if err := s.readJSON(run, run.RawPath(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveEnriched overwrites the processed artifact of run.
func (s *FileStore) SaveEnriched(run daily.Run, items []news.EnrichedItem) error {
	if items == nil {
		items = []news.EnrichedItem{}
	}
	return s.WriteJSON(run.ProcessedPath(), items)
}

// LoadEnriched reads the processed artifact of run.
func (s *FileStore) LoadEnriched(run daily.Run) ([]news.EnrichedItem, error) {
	var items []news.EnrichedItem
	if err := s.readJSON(run, run.ProcessedPath(), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// WriteJSON writes v as indented UTF-8 JSON without HTML escaping.
func (s *FileStore) WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return s.WriteFile(path, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (s *FileStore) WriteText(path, text string) error {
	return s.WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
}

// WriteFile creates path's directory, streams write into a temp file next to
// path and renames it into place.
func (s *FileStore) WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	s.log.Debug("artifact written", "path", path)
	return nil
}

func (s *FileStore) readJSON(run daily.Run, path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &MissingInputError{Date: run.Date, Path: path}
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}
