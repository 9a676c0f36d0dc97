package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/aluiziolira/bookparse/parser/parsertest"
)

func TestExtractBook(t *testing.T) {
	book, err := ExtractBook(parsertest.DetailPage("a897fe39b1053632", "A Light in the Attic"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if book.Name != "A Light in the Attic" {
		t.Fatalf("name=%q", book.Name)
	}
	if book.UPC != "a897fe39b1053632" {
		t.Fatalf("upc=%q", book.UPC)
	}
	if book.Availability != "In stock (22 available)" {
		t.Fatalf("availability=%q", book.Availability)
	}
	if book.PriceExclTax.String() != "51.77" {
		t.Fatalf("price=%s, want 51.77", book.PriceExclTax)
	}
	if !book.Tax.IsZero() {
		t.Fatalf("tax=%s, want 0", book.Tax)
	}
	if err := book.Validate(); err != nil {
		t.Fatalf("extracted book should validate: %v", err)
	}
}

func TestExtractBookMissingFields(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "missing upc",
			html: parsertest.DetailPage("", "Some Book"),
			want: []string{"upc"},
		},
		{
			name: "missing title",
			html: parsertest.DetailPage("abc", ""),
			want: []string{"name"},
		},
		{
			name: "malformed tax",
			html: strings.Replace(parsertest.DetailPage("abc", "Some Book"), "<td>&pound;0.00</td>", "<td>n/a</td>", 1),
			want: []string{"tax"},
		},
		{
			name: "missing availability and price",
			html: `<div class="product_main"><h1>Title</h1></div>
<table class="table table-striped"><tr><th>UPC</th><td>abc</td></tr><tr><th>Tax</th><td>£1.00</td></tr></table>`,
			want: []string{"availability", "price_excl_tax"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractBook(tt.html)
			var missing *MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldsError, got %v", err)
			}
			if !reflect.DeepEqual(missing.Fields, tt.want) {
				t.Fatalf("fields=%v, want %v", missing.Fields, tt.want)
			}
		})
	}
}

func TestExtractBookWithoutTable(t *testing.T) {
	_, err := ExtractBook(`<div class="product_main"><h1>Title</h1></div>`)
	if !errors.Is(err, ErrNoProductTable) {
		t.Fatalf("expected ErrNoProductTable, got %v", err)
	}
}

func TestExtractListing(t *testing.T) {
	html := parsertest.ListingPage([]int{1, 2, 3}, "page-2.html")
	entries, next, err := ExtractListing(html, "http://example.test/catalogue/page-1.html")
	if err != nil {
		t.Fatalf("extract listing: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries=%d, want 3", len(entries))
	}
	if entries[0].Name != "Book 1" {
		t.Fatalf("name=%q", entries[0].Name)
	}
	if entries[0].DetailURL != "http://example.test/catalogue/book-1/index.html" {
		t.Fatalf("detail url=%q", entries[0].DetailURL)
	}
	if next != "http://example.test/catalogue/page-2.html" {
		t.Fatalf("next=%q", next)
	}
}

func TestExtractListingSkipsMalformedEntries(t *testing.T) {
	html := `<article class="product_pod"><h3><a href="ok/index.html" title="Good">Good</a></h3></article>
<article class="product_pod"><h3><a href="x/index.html">No title</a></h3></article>
<article class="product_pod"><h3><a title="No link">No link</a></h3></article>
<article class="product_pod"><h3><a href="mailto:someone@example.test" title="Mail">Mail</a></h3></article>`

	entries, next, err := ExtractListing(html, "http://example.test/catalogue/")
	if err != nil {
		t.Fatalf("extract listing: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Good" {
		t.Fatalf("entries=%+v, want only Good", entries)
	}
	if next != "" {
		t.Fatalf("next=%q, want empty", next)
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with currency symbol",
			input:    "£51.77",
			expected: "51.77",
		},
		{
			name:     "mis-decoded symbol",
			input:    "Â£51.77",
			expected: "51.77",
		},
		{
			name:     "with whitespace",
			input:    "  £10.50  ",
			expected: "10.50",
		},
		{
			name:     "already clean",
			input:    "25.99",
			expected: "25.99",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePrice(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePrice(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	amount, err := ParseMoney("£53.74")
	if err != nil {
		t.Fatalf("parse money: %v", err)
	}
	if amount.String() != "53.74" {
		t.Fatalf("amount=%s", amount)
	}
	if _, err := ParseMoney("free"); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
	if _, err := ParseMoney("  "); err == nil {
		t.Fatalf("expected error for empty amount")
	}
}

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with whitespace",
			input:    "  In stock (22 available)  ",
			expected: "In stock (22 available)",
		},
		{
			name:     "multi-line",
			input:    "\n      In stock\n   (3 available)\n",
			expected: "In stock (3 available)",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeAvailability(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeAvailability(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
