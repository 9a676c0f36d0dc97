package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	StartURL     string
	MaxPages     int
	Parallelism  int
	BatchSize    int
	Timeout      time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
	OutputFile   string
	OutputFormat string // json or dual
	UserAgent    string
	ParserAddr   string
	MetricsAddr  string
	Verbose      bool
}

// DefaultConfig returns the defaults for the demo catalogue.
func DefaultConfig() *Config {
	return &Config{
		StartURL:     "https://books.toscrape.com/catalogue/page-1.html",
		MaxPages:     200,
		Parallelism:  10,
		BatchSize:    100,
		Timeout:      30 * time.Second,
		MaxAttempts:  3,
		RetryBackoff: 500 * time.Millisecond,
		OutputFile:   "books.json",
		OutputFormat: "json",
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		ParserAddr:   "127.0.0.1:50051",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("start URL cannot be empty")
	}
	if err := validateHTTPURL(c.StartURL); err != nil {
		return fmt.Errorf("invalid start URL: %w", err)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	if c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be json or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.ParserAddr == "" {
		return fmt.Errorf("parser address cannot be empty")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
