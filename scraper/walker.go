package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/parser"
)

// maxTrackedPages caps the memory of the pagination cycle guard.
const maxTrackedPages = 4096

// Walker follows "next" links through a paginated catalogue.
type Walker struct {
	fetcher Fetcher
	retry   RetryPolicy
	logger  *slog.Logger

	pages atomic.Int64
}

// NewWalker returns a walker fetching pages through f with policy retry.
func NewWalker(f Fetcher, retry RetryPolicy, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{fetcher: f, retry: retry, logger: logger}
}

// crawlState is owned by a single Walk call.
type crawlState struct {
	currentURL   string
	pagesVisited int
	pageCeiling  int
}

// Walk collects listing entries starting at startURL until a page has no
// next link, pageCeiling pages have been visited, or a next link points back
// to a page already visited. A page that cannot be fetched after all retries
// aborts the walk.
func (w *Walker) Walk(ctx context.Context, startURL string, pageCeiling int) ([]models.ListingEntry, error) {
	if pageCeiling <= 0 {
		return nil, fmt.Errorf("page ceiling must be positive, got %d", pageCeiling)
	}
	visited, err := lru.New[string, struct{}](min(pageCeiling, maxTrackedPages))
	if err != nil {
		return nil, fmt.Errorf("create visited cache: %w", err)
	}

	state := crawlState{currentURL: startURL, pageCeiling: pageCeiling}
	var entries []models.ListingEntry

	for state.currentURL != "" && state.pagesVisited < state.pageCeiling {
		pageURL := state.currentURL
		if visited.Contains(pageURL) {
			w.logger.Warn("pagination loops back, stopping walk",
				slog.String("url", pageURL),
				slog.Int("pages", state.pagesVisited),
			)
			break
		}
		visited.Add(pageURL, struct{}{})

		html, err := Retry(ctx, w.retry, func(ctx context.Context) (string, error) {
			return w.fetcher.Fetch(ctx, pageURL)
		})
		if err != nil {
			return nil, fmt.Errorf("fetch listing page %s: %w", pageURL, err)
		}

		found, next, err := parser.ExtractListing(html, pageURL)
		if err != nil {
			return nil, fmt.Errorf("extract listing page %s: %w", pageURL, err)
		}
		entries = append(entries, found...)
		state.pagesVisited++
		w.pages.Add(1)
		state.currentURL = next

		w.logger.Debug("listing page walked",
			slog.String("url", pageURL),
			slog.Int("entries", len(found)),
			slog.Int("pages", state.pagesVisited),
		)
	}

	return entries, nil
}

// Pages returns the number of listing pages visited across all walks.
func (w *Walker) Pages() int {
	return int(w.pages.Load())
}
