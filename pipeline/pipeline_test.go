package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/storage"
	"github.com/shopspring/decimal"
)

func book(upc string) *models.Book {
	return &models.Book{
		Name:         "Book " + upc,
		Availability: "In stock",
		UPC:          upc,
		PriceExclTax: decimal.RequireFromString("10.00"),
		Tax:          decimal.Zero,
	}
}

func upcs(books []*models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.UPC)
	}
	return out
}

func TestMergeAppendsOnlyNewKeys(t *testing.T) {
	existing := []*models.Book{book("A"), book("B")}
	fresh := []*models.Book{book("B"), book("C")}

	merged, stats := Merge(existing, fresh)

	if got, want := upcs(merged), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("merged=%v, want %v", got, want)
	}
	if merged[1] != existing[1] {
		t.Fatalf("existing B should be kept, not replaced by the fresh copy")
	}
	if stats.Added != 1 || stats.Duplicates != 1 {
		t.Fatalf("stats=%+v, want 1 added 1 duplicate", stats)
	}
}

func TestMergeDedupsWithinFreshBatch(t *testing.T) {
	merged, stats := Merge(nil, []*models.Book{book("X"), book("Y"), book("X")})

	if got, want := upcs(merged), []string{"X", "Y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("merged=%v, want %v", got, want)
	}
	if stats.Added != 2 || stats.Duplicates != 1 {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestMergeDropsInvalidRecords(t *testing.T) {
	invalid := book("")
	merged, stats := Merge([]*models.Book{book("A")}, []*models.Book{invalid, nil, book("B")})

	if got, want := upcs(merged), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("merged=%v, want %v", got, want)
	}
	if stats.Invalid != 2 {
		t.Fatalf("invalid=%d, want 2", stats.Invalid)
	}
}

func TestMergeNeverShrinksExisting(t *testing.T) {
	existing := []*models.Book{book("A"), book("B"), book("C")}
	merged, _ := Merge(existing, nil)
	if !reflect.DeepEqual(upcs(merged), upcs(existing)) {
		t.Fatalf("merged=%v, want %v", upcs(merged), upcs(existing))
	}
}

func TestOutputCommitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	out, err := NewOutput(path, "json", nil)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}

	fresh := []*models.Book{book("A"), book("B")}
	stats, total, err := out.Commit(fresh)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if stats.Added != 2 || total != 2 {
		t.Fatalf("first commit added=%d total=%d", stats.Added, total)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	stats, total, err = out.Commit(fresh)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if stats.Added != 0 || total != 2 {
		t.Fatalf("second commit added=%d total=%d", stats.Added, total)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("output changed on identical rerun:\n%s\n---\n%s", first, second)
	}
}

func TestOutputCommitOverCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	if err := os.WriteFile(path, []byte("][ not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := NewOutput(path, "json", nil)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}

	if got := out.Load(); len(got) != 0 {
		t.Fatalf("corrupt file should load as empty, got %d", len(got))
	}
	if _, total, err := out.Commit([]*models.Book{book("A")}); err != nil || total != 1 {
		t.Fatalf("commit total=%d err=%v", total, err)
	}
	books, err := storage.LoadRecords(path)
	if err != nil || len(books) != 1 {
		t.Fatalf("reload books=%d err=%v", len(books), err)
	}
}

func TestOutputDualWritesCSVMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")
	out, err := NewOutput(path, "DUAL", nil)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}
	if _, _, err := out.Commit([]*models.Book{book("A")}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := os.Stat(out.CSVPath()); err != nil {
		t.Fatalf("csv mirror missing: %v", err)
	}
}

func TestNewOutputRejectsUnknownFormat(t *testing.T) {
	if _, err := NewOutput("books.json", "xml", nil); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
