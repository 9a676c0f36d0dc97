// Package storage persists book records as JSON files, CSV exports, or Postgres rows.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aluiziolira/bookparse/models"
)

// ErrCorrupt is returned when a record file exists but cannot be decoded.
var ErrCorrupt = errors.New("storage: corrupt record file")

// RecordStore is the durable record set behind the parser service.
type RecordStore interface {
	// Load returns all stored records in insertion order.
	Load(ctx context.Context) ([]*models.Book, error)
	// Append stores book unless a record with the same UPC is present.
	// It reports whether the record was added.
	Append(ctx context.Context, book *models.Book) (bool, error)
	Close() error
}

// LoadRecords reads a JSON array of records. A missing file yields an empty
// set and no error; undecodable content yields ErrCorrupt.
func LoadRecords(path string) ([]*models.Book, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var books []*models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	out := books[:0]
	for _, b := range books {
		if b == nil || b.UPC == "" {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// SaveRecords overwrites path with books. The file is written to a temporary
// sibling first and renamed into place, so readers never see a partial file.
func SaveRecords(path string, books []*models.Book) error {
	if books == nil {
		books = []*models.Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
