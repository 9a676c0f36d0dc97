package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/bookparse/config"
)

func TestRunSinglePageReturnsFetchError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ParserAddr = "127.0.0.1:1"
	cfg.MaxAttempts = 1
	cfg.Timeout = 2 * time.Second
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(cfg, "http://127.0.0.1:1/catalogue/book-1/index.html", logger)
	if err == nil {
		t.Fatalf("expected error for unreachable page")
	}
	if !strings.Contains(err.Error(), "book-1/index.html") {
		t.Fatalf("error should name the page, got %v", err)
	}
}
