// Package models defines data structures shared by the scraper and the parser service.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Stored files carry prices as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ListingEntry is a catalogue row: the book title and the URL of its detail page.
type ListingEntry struct {
	Name      string
	DetailURL string
}

// Book is a record extracted from a detail page. UPC is its identity.
type Book struct {
	Name         string          `csv:"name" json:"name"`
	Availability string          `csv:"availability" json:"availability"`
	UPC          string          `csv:"upc" json:"upc"`
	PriceExclTax decimal.Decimal `csv:"price_excl_tax" json:"price_excl_tax"`
	Tax          decimal.Decimal `csv:"tax" json:"tax"`
}

// Validate ensures the record carries every required field.
func (b *Book) Validate() error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if strings.TrimSpace(b.UPC) == "" {
		return fmt.Errorf("book missing upc")
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("book missing name for upc %s", b.UPC)
	}
	if strings.TrimSpace(b.Availability) == "" {
		return fmt.Errorf("book missing availability for upc %s", b.UPC)
	}
	return nil
}

// ScraperResult holds the overall result of a scraping run.
type ScraperResult struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	ListingCount int
	ScrapedCount int
	Duplicates   int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
	PageCount    int
	NewStored    int
	TotalStored  int
}

// Duration returns the wall-clock time of the run.
func (r *ScraperResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
