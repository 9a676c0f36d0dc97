package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/bookparse/config"
	"github.com/gocolly/colly/v2"
	"golang.org/x/sync/semaphore"
)

// Fetcher retrieves the body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Transport fetches pages with a colly collector. Every fetch holds one slot
// of the shared gate for its whole duration, so listing and detail pages
// together never exceed the gate's capacity.
type Transport struct {
	collector *colly.Collector
	gate      *semaphore.Weighted
	metrics   *Metrics

	requests atomic.Int64
}

var _ Fetcher = (*Transport)(nil)

// NewTransport builds a transport from cfg that admits fetches through gate.
func NewTransport(cfg *config.Config, gate *semaphore.Weighted, metrics *Metrics) (*Transport, error) {
	if gate == nil {
		return nil, fmt.Errorf("concurrency gate is required")
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: cfg.Parallelism,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Transport{
		collector: collector,
		gate:      gate,
		metrics:   metrics,
	}, nil
}

// WithRoundTripper swaps the HTTP transport, mainly for tests.
func (t *Transport) WithRoundTripper(rt http.RoundTripper) {
	t.collector.WithTransport(rt)
}

// Requests returns the number of fetch attempts issued so far.
func (t *Transport) Requests() int {
	return int(t.requests.Load())
}

// Fetch returns the body of url. Non-2xx responses and network failures are
// returned as *TransportError.
func (t *Transport) Fetch(ctx context.Context, url string) (string, error) {
	if err := t.gate.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer t.gate.Release(1)
	t.metrics.AddInFlight(1)
	defer t.metrics.AddInFlight(-1)

	c := t.collector.Clone()
	c.Context = ctx

	var (
		body       []byte
		statusCode int
	)
	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	t.requests.Add(1)
	start := time.Now()
	err := c.Visit(url)
	t.metrics.ObserveDuration(time.Since(start))

	if err != nil {
		terr := newTransportError(url, statusCode, err)
		t.metrics.IncRequest("failed")
		t.metrics.IncError(terr.Kind)
		return "", terr
	}
	t.metrics.IncRequest("ok")
	return string(body), nil
}
