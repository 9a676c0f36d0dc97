package models

// ParseStatus tags the outcome of a ParseBook call.
type ParseStatus int

const (
	// StatusAccepted means the record was new and has been stored.
	StatusAccepted ParseStatus = iota
	// StatusDuplicate means the UPC was already accepted earlier.
	StatusDuplicate
	// StatusInvalid means required fields were missing from the page.
	StatusInvalid
)

func (s ParseStatus) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusDuplicate:
		return "duplicate"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ParseResult is the tagged outcome of parsing one detail page.
// Book is set only for StatusAccepted, Reason only for StatusInvalid.
type ParseResult struct {
	Status ParseStatus
	Book   *Book
	Reason string
}

// Accepted builds an accepted result.
func Accepted(b *Book) ParseResult {
	return ParseResult{Status: StatusAccepted, Book: b}
}

// Duplicate builds a duplicate result.
func Duplicate() ParseResult {
	return ParseResult{Status: StatusDuplicate}
}

// Invalid builds an invalid result carrying the reason.
func Invalid(reason string) ParseResult {
	return ParseResult{Status: StatusInvalid, Reason: reason}
}
