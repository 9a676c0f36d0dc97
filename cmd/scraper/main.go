package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/bookparse/config"
	"github.com/aluiziolira/bookparse/logging"
	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/pipeline"
	"github.com/aluiziolira/bookparse/rpc"
	"github.com/aluiziolira/bookparse/scraper"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.StartURL, "start-url", cfg.StartURL, "First catalogue page to walk")
	flag.IntVar(&cfg.MaxPages, "pages", cfg.MaxPages, "Maximum catalogue pages to walk")
	flag.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Maximum concurrent fetches")
	flag.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Detail pages dispatched per batch")
	flag.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Fetch attempts per page")
	flag.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base retry backoff")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flag.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Output file path")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Output format: json or dual")
	flag.StringVar(&cfg.ParserAddr, "parser-addr", cfg.ParserAddr, "Parser service gRPC address")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	singleURL := flag.String("url", "", "Scrape a single detail page and print the outcome")
	flag.Parse()

	logger := logging.Setup(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg, *singleURL, logger); err != nil {
		logger.Error("scraper failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, singleURL string, logger *slog.Logger) error {
	client, err := rpc.Dial(cfg.ParserAddr, cfg.Timeout)
	if err != nil {
		return fmt.Errorf("connect parser service: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("close parser client", slog.Any("error", err))
		}
	}()

	s, err := scraper.NewScraper(cfg, client, logger)
	if err != nil {
		return fmt.Errorf("initialise scraper: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if singleURL != "" {
		return scrapeOne(ctx, s, singleURL)
	}

	out, err := pipeline.NewOutput(cfg.OutputFile, cfg.OutputFormat, logger)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		logger.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	logger.Info("starting scrape",
		slog.String("start_url", cfg.StartURL),
		slog.Int("pages", cfg.MaxPages),
		slog.Int("parallel", cfg.Parallelism),
		slog.String("parser", cfg.ParserAddr),
	)

	result, err := s.Run(ctx, out)
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	printSummary(result, out)
	return nil
}

func scrapeOne(ctx context.Context, s *scraper.Scraper, url string) error {
	res, err := s.ScrapeOne(ctx, url)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", url, err)
	}
	switch res.Status {
	case models.StatusAccepted:
		b := res.Book
		fmt.Printf("accepted: %s\n  upc:          %s\n  availability: %s\n  price:        %s\n  tax:          %s\n",
			b.Name, b.UPC, b.Availability, b.PriceExclTax.StringFixed(2), b.Tax.StringFixed(2))
	case models.StatusDuplicate:
		fmt.Println("duplicate: record was already stored")
	default:
		fmt.Printf("invalid: %s\n", res.Reason)
	}
	return nil
}

func printSummary(result *models.ScraperResult, out *pipeline.Output) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	fmt.Printf("  Run ID:        %s\n", result.RunID)
	fmt.Printf("  Listing found: %d\n", result.ListingCount)
	fmt.Printf("  Scraped:       %d\n", result.ScrapedCount)
	fmt.Printf("  Duplicates:    %d\n", result.Duplicates)
	fmt.Printf("  Elapsed:       %v\n", result.Duration().Round(time.Millisecond))
	fmt.Printf("  Stored:        %d new, %d total\n", result.NewStored, result.TotalStored)
	fmt.Printf("  Pages:         %d\n", result.PageCount)
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  Failed URLs:   %d\n", len(result.FailedURLs))
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Output file:   %s\n", out.Path())
	fmt.Println(separator)
}
