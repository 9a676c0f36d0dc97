package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/storage"
)

// Output is the client-side record file that accumulates across runs.
type Output struct {
	path   string
	format string
	logger *slog.Logger
}

// NewOutput returns the output set stored at path. With format "dual" every
// commit also mirrors the full set to a CSV file next to it.
func NewOutput(path, format string, logger *slog.Logger) (*Output, error) {
	if path == "" {
		return nil, errors.New("output path cannot be empty")
	}
	format = strings.ToLower(format)
	if format != "json" && format != "dual" {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Output{path: path, format: format, logger: logger}, nil
}

// Path returns the JSON file path.
func (o *Output) Path() string {
	return o.path
}

// CSVPath returns the path of the CSV mirror.
func (o *Output) CSVPath() string {
	return strings.TrimSuffix(o.path, ".json") + ".csv"
}

// Load returns the stored records. A missing or unreadable file yields an
// empty set.
func (o *Output) Load() []*models.Book {
	books, err := storage.LoadRecords(o.path)
	if err != nil {
		o.logger.Warn("existing output unreadable, starting from empty set",
			slog.String("path", o.path),
			slog.Any("error", err),
		)
		return nil
	}
	return books
}

// Commit merges fresh into the stored set and rewrites the file. It returns
// the merge statistics and the size of the stored set afterwards.
func (o *Output) Commit(fresh []*models.Book) (MergeStats, int, error) {
	merged, stats := Merge(o.Load(), fresh)

	if err := storage.SaveRecords(o.path, merged); err != nil {
		return stats, 0, fmt.Errorf("save output: %w", err)
	}
	if o.format == "dual" {
		if err := storage.ExportCSV(o.CSVPath(), merged); err != nil {
			return stats, len(merged), fmt.Errorf("export csv: %w", err)
		}
	}
	return stats, len(merged), nil
}
