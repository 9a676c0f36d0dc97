package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/bookparse/models"
)

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")

	if err := ExportCSV(path, []*models.Book{testBook("a"), testBook("b")}); err != nil {
		t.Fatalf("export csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	if records[0][0] != "name" || records[0][2] != "upc" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][2] != "a" || records[1][3] != "51.77" || records[1][4] != "0.00" {
		t.Fatalf("unexpected row: %v", records[1])
	}
}
