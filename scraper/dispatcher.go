package scraper

import (
	"context"
	"fmt"

	"github.com/aluiziolira/bookparse/models"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of detail tasks started together.
const DefaultBatchSize = 100

// Result is the outcome of one detail task. Book is nil whenever Err is set.
type Result struct {
	Entry models.ListingEntry
	Book  *models.Book
	Err   error
}

// Task fetches and parses the detail page of one listing entry.
type Task func(ctx context.Context, entry models.ListingEntry) (*models.Book, error)

// Dispatch runs task for every entry in consecutive batches of batchSize.
// Tasks within a batch run concurrently; the next batch starts once the
// current one has finished. results[i] always belongs to entries[i], and a
// failing task never stops its siblings or later batches.
func Dispatch(ctx context.Context, entries []models.ListingEntry, batchSize int, task Task) []Result {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	results := make([]Result, len(entries))
	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				book, err := runTask(ctx, task, entries[i])
				results[i] = Result{Entry: entries[i], Book: book, Err: err}
				return nil
			})
		}
		_ = g.Wait()
	}
	return results
}

func runTask(ctx context.Context, task Task, entry models.ListingEntry) (book *models.Book, err error) {
	defer func() {
		if r := recover(); r != nil {
			book, err = nil, fmt.Errorf("task panicked for %s: %v", entry.DetailURL, r)
		}
	}()
	book, err = task(ctx, entry)
	if err != nil {
		return nil, err
	}
	return book, nil
}
