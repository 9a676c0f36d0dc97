package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrDuplicate marks a detail page whose UPC the parser service had already
// accepted. It is an expected outcome, not a failure.
var ErrDuplicate = errors.New("scraper: duplicate upc")

// TransportError reports a failed fetch: a network error or a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Kind       string
	Err        error
}

func newTransportError(url string, statusCode int, err error) *TransportError {
	if err == nil {
		err = fmt.Errorf("http status %d", statusCode)
	}
	return &TransportError{
		URL:        url,
		StatusCode: statusCode,
		Kind:       classifyError(err, statusCode),
		Err:        err,
	}
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// InvalidError reports a detail page the parser service could not extract.
type InvalidError struct {
	URL    string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid page %s: %s", e.URL, e.Reason)
}

func classifyError(err error, statusCode int) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection"
	}

	switch statusCode {
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if statusCode >= http.StatusBadRequest {
		return "status"
	}
	return "other"
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return transport.Kind
	}
	var invalid *InvalidError
	if errors.As(err, &invalid) {
		return "invalid"
	}
	if errors.Is(err, ErrDuplicate) {
		return "duplicate"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "other"
}
