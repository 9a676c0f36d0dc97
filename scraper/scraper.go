// Package scraper walks the catalogue, fetches detail pages under a shared
// concurrency gate and hands them to the parser service.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aluiziolira/bookparse/config"
	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/pipeline"
)

// DetailParser turns the HTML of a detail page into a parse outcome. The
// returned error covers failures to reach the parser, not page content, and
// is retried unless it reports itself as permanent.
type DetailParser interface {
	ParseBook(ctx context.Context, html string) (models.ParseResult, error)
}

// Scraper runs one crawl against the configured catalogue.
type Scraper struct {
	cfg       *config.Config
	transport *Transport
	parser    DetailParser
	walker    *Walker
	retry     RetryPolicy
	logger    *slog.Logger
	Metrics   *Metrics

	retries atomic.Int64

	mu           sync.Mutex
	failedURLs   []string
	errorsByType map[string]int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, parser DetailParser, logger *slog.Logger) (*Scraper, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if parser == nil {
		return nil, errors.New("detail parser is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scraper{
		cfg:          cfg,
		parser:       parser,
		logger:       logger,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}

	gate := semaphore.NewWeighted(int64(cfg.Parallelism))
	transport, err := NewTransport(cfg, gate, s.Metrics)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}
	s.transport = transport

	s.retry = RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.RetryBackoff,
		OnRetry: func(attempt int, err error) {
			s.retries.Add(1)
			s.Metrics.IncRetries()
			s.logger.Debug("retrying fetch",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
		},
	}
	s.walker = NewWalker(transport, s.retry, logger)
	return s, nil
}

// Transport returns the fetcher used for every page of the run.
func (s *Scraper) Transport() *Transport {
	return s.transport
}

// Run walks the listing, scrapes every detail page in batches and commits
// the accepted records to out. Only a failed listing walk aborts the run.
func (s *Scraper) Run(ctx context.Context, out *pipeline.Output) (*models.ScraperResult, error) {
	if out == nil {
		return nil, errors.New("output is required")
	}
	result := &models.ScraperResult{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}

	logger := s.logger.With(slog.String("run_id", result.RunID))

	entries, err := s.walker.Walk(ctx, s.cfg.StartURL, s.cfg.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("walk listing: %w", err)
	}
	result.ListingCount = len(entries)
	logger.Info("listing walked",
		slog.Int("entries", len(entries)),
		slog.Int("pages", s.walker.Pages()),
	)

	results := Dispatch(ctx, entries, s.cfg.BatchSize, s.scrapeDetail)

	var fresh []*models.Book
	for _, r := range results {
		switch {
		case r.Err == nil:
			fresh = append(fresh, r.Book)
		case errors.Is(r.Err, ErrDuplicate):
			result.Duplicates++
		default:
			s.recordFailure(r.Entry.DetailURL, r.Err)
		}
	}
	result.ScrapedCount = len(fresh)

	stats, total, err := out.Commit(fresh)
	if err != nil {
		return nil, fmt.Errorf("commit output: %w", err)
	}
	result.NewStored = stats.Added
	result.TotalStored = total

	result.EndTime = time.Now()
	result.RetryCount = int(s.retries.Load())
	result.RequestCount = s.transport.Requests()
	result.PageCount = s.walker.Pages()
	result.FailedURLs, result.ErrorsByType = s.snapshotFailures()
	result.ErrorCount = len(result.FailedURLs)

	logger.Info("run complete",
		slog.Int("scraped", result.ScrapedCount),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("failed", result.ErrorCount),
		slog.Int("new_stored", result.NewStored),
		slog.Duration("elapsed", result.Duration()),
	)
	return result, nil
}

// ScrapeOne fetches a single detail page and returns the parser's outcome.
// The fetch and the parse call are retried separately under the same policy.
func (s *Scraper) ScrapeOne(ctx context.Context, url string) (models.ParseResult, error) {
	html, err := Retry(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.transport.Fetch(ctx, url)
	})
	if err != nil {
		return models.ParseResult{}, err
	}
	res, err := Retry(ctx, s.retry, func(ctx context.Context) (models.ParseResult, error) {
		return s.parser.ParseBook(ctx, html)
	})
	if err != nil {
		return models.ParseResult{}, fmt.Errorf("parse %s: %w", url, err)
	}
	s.Metrics.IncOutcome(res.Status.String())
	return res, nil
}

func (s *Scraper) scrapeDetail(ctx context.Context, entry models.ListingEntry) (*models.Book, error) {
	res, err := s.ScrapeOne(ctx, entry.DetailURL)
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case models.StatusAccepted:
		s.Metrics.IncItems()
		return res.Book, nil
	case models.StatusDuplicate:
		return nil, ErrDuplicate
	default:
		return nil, &InvalidError{URL: entry.DetailURL, Reason: res.Reason}
	}
}

func (s *Scraper) recordFailure(url string, err error) {
	label := errorTypeLabel(err)
	s.logger.Warn("detail page failed",
		slog.String("url", url),
		slog.String("error_type", label),
		slog.Any("error", err),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.failedURLs = append(s.failedURLs, url)
	s.errorsByType[label]++
}

func (s *Scraper) snapshotFailures() ([]string, map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, len(s.failedURLs))
	copy(urls, s.failedURLs)
	byType := make(map[string]int, len(s.errorsByType))
	for k, v := range s.errorsByType {
		byType[k] = v
	}
	return urls, byType
}
