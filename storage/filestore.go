package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aluiziolira/bookparse/models"
)

var _ RecordStore = (*FileStore)(nil)

// FileStore keeps the record set in a single JSON file.
type FileStore struct {
	path string

	// mu serializes every load-append-save cycle so concurrent appends for
	// different keys always build on the latest snapshot.
	mu sync.Mutex
}

// NewFileStore returns a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the current record set.
func (s *FileStore) Load(ctx context.Context) ([]*models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadRecords(s.path)
}

// Append reloads the file, appends book when its UPC is absent, and saves.
// A corrupt file is treated as empty and replaced.
func (s *FileStore) Append(ctx context.Context, book *models.Book) (bool, error) {
	if err := book.Validate(); err != nil {
		return false, fmt.Errorf("append record: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := LoadRecords(s.path)
	if errors.Is(err, ErrCorrupt) {
		slog.Warn("record store unreadable, starting from empty set",
			slog.String("path", s.path),
			slog.Any("error", err),
		)
		existing = nil
	} else if err != nil {
		return false, err
	}

	for _, b := range existing {
		if b.UPC == book.UPC {
			return false, nil
		}
	}

	if err := SaveRecords(s.path, append(existing, book)); err != nil {
		return false, err
	}
	return true, nil
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}
