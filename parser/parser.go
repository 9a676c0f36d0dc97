// Package parser extracts listing entries and book records from catalogue HTML.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoProductTable is returned when a detail page has no product information table.
var ErrNoProductTable = errors.New("parser: product information table not found")

// MissingFieldsError reports required fields that were absent or unparsable.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: [%s]", strings.Join(e.Fields, ", "))
}

// NormalizePrice removes the currency symbol and surrounding whitespace.
func NormalizePrice(price string) string {
	price = strings.TrimSpace(price)
	price = strings.ReplaceAll(price, "Â£", "")
	price = strings.ReplaceAll(price, "£", "")
	return strings.TrimSpace(price)
}

// ParseMoney converts a price cell such as "£51.77" into a decimal.
func ParseMoney(text string) (decimal.Decimal, error) {
	cleaned := NormalizePrice(text)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", text, err)
	}
	return amount, nil
}

// NormalizeAvailability collapses internal whitespace of the availability text.
func NormalizeAvailability(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
