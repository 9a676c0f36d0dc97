// Package service implements the book parsing service. It turns raw detail
// pages into records and accepts each UPC at most once per process, persisting
// every accepted record to a RecordStore.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/parser"
	"github.com/aluiziolira/bookparse/storage"
)

// Extractor turns a detail page into a record.
type Extractor func(html string) (*models.Book, error)

// Service is the stateful parser behind the remote ParseBook operation.
type Service struct {
	keys    KeySet
	store   storage.RecordStore
	extract Extractor
	metrics *Metrics
	logger  *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExtractor replaces the detail page extractor.
func WithExtractor(fn Extractor) Option {
	return func(s *Service) {
		if fn != nil {
			s.extract = fn
		}
	}
}

// New builds a Service and seeds keys with every UPC already in store, so
// records persisted by an earlier process are reported as duplicates.
// An unreadable store is logged and treated as empty.
func New(ctx context.Context, keys KeySet, store storage.RecordStore, opts ...Option) (*Service, error) {
	if keys == nil {
		return nil, fmt.Errorf("key set is required")
	}
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}

	s := &Service{
		keys:    keys,
		store:   store,
		extract: parser.ExtractBook,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	existing, err := store.Load(ctx)
	if err != nil {
		s.logger.Warn("could not load stored records, starting empty", slog.Any("error", err))
	}
	for _, b := range existing {
		keys.Claim(b.UPC)
	}
	s.metrics.SetSeenKeys(keys.Len())
	s.logger.Info("parser service ready",
		slog.Int("stored_records", len(existing)),
		slog.Int("seen_keys", keys.Len()),
	)
	return s, nil
}

// ParseBook extracts a record from html and accepts it unless its UPC was
// already accepted.
func (s *Service) ParseBook(ctx context.Context, html string) models.ParseResult {
	book, err := s.extract(html)
	if err != nil {
		s.metrics.IncOutcome(models.StatusInvalid.String())
		return models.Invalid(err.Error())
	}

	if !s.keys.Claim(book.UPC) {
		s.metrics.IncOutcome(models.StatusDuplicate.String())
		return models.Duplicate()
	}
	s.metrics.SetSeenKeys(s.keys.Len())

	added, err := s.store.Append(ctx, book)
	switch {
	case err != nil:
		// The key stays claimed. The record is still returned so the caller
		// keeps it; a later process will store it again since it is not on disk.
		s.metrics.IncStoreFailure()
		s.logger.Error("persist accepted record",
			slog.String("upc", book.UPC),
			slog.Any("error", err),
		)
	case !added:
		s.logger.Debug("record already in store", slog.String("upc", book.UPC))
	}

	s.metrics.IncOutcome(models.StatusAccepted.String())
	return models.Accepted(book)
}

// SeenKeys returns the number of UPCs accepted so far.
func (s *Service) SeenKeys() int {
	return s.keys.Len()
}
