// Package pipeline merges freshly scraped records into the persisted output set.
package pipeline

import (
	"github.com/aluiziolira/bookparse/models"
)

// MergeStats counts what happened to the fresh records during a merge.
type MergeStats struct {
	Added      int
	Duplicates int
	Invalid    int
}

// Merge appends to existing every fresh record whose UPC is not yet present,
// in scrape order. Existing records are never reordered, edited or removed.
// Fresh records that fail validation are dropped.
func Merge(existing, fresh []*models.Book) ([]*models.Book, MergeStats) {
	var stats MergeStats

	seen := make(map[string]struct{}, len(existing)+len(fresh))
	merged := make([]*models.Book, 0, len(existing)+len(fresh))
	for _, book := range existing {
		if book == nil {
			continue
		}
		seen[book.UPC] = struct{}{}
		merged = append(merged, book)
	}

	for _, book := range fresh {
		if err := book.Validate(); err != nil {
			stats.Invalid++
			continue
		}
		if _, ok := seen[book.UPC]; ok {
			stats.Duplicates++
			continue
		}
		seen[book.UPC] = struct{}{}
		merged = append(merged, book)
		stats.Added++
	}

	return merged, stats
}
