// Package config holds scraper and parser service configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files without overriding
// variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// EnvString returns the trimmed value of key and whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer.
func EnvInt(key string) (int, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// EnvDuration parses key as a Go duration ("500ms", "30s").
func EnvDuration(key string) (time.Duration, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

// EnvBool parses key as a boolean.
func EnvBool(key string) (bool, bool, error) {
	value, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, true, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

// ApplyEnv overrides c with SCRAPER_* and PARSER_ADDR variables.
func (c *Config) ApplyEnv() error {
	if v, ok := EnvString("SCRAPER_START_URL"); ok {
		c.StartURL = v
	}
	if err := applyInt("SCRAPER_PAGES", &c.MaxPages); err != nil {
		return err
	}
	if err := applyInt("SCRAPER_PARALLEL", &c.Parallelism); err != nil {
		return err
	}
	if err := applyInt("SCRAPER_BATCH_SIZE", &c.BatchSize); err != nil {
		return err
	}
	if err := applyInt("SCRAPER_MAX_ATTEMPTS", &c.MaxAttempts); err != nil {
		return err
	}
	if err := applyDuration("SCRAPER_RETRY_BASE", &c.RetryBackoff); err != nil {
		return err
	}
	if err := applyDuration("SCRAPER_TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	if v, ok := EnvString("SCRAPER_OUTPUT"); ok {
		c.OutputFile = v
	}
	if v, ok := EnvString("SCRAPER_FORMAT"); ok {
		c.OutputFormat = v
	}
	if v, ok := EnvString("PARSER_ADDR"); ok {
		c.ParserAddr = v
	}
	if v, ok := EnvString("SCRAPER_METRICS_ADDR"); ok {
		c.MetricsAddr = v
	}
	if v, ok, err := EnvBool("SCRAPER_VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = v
	}
	return nil
}

// ApplyEnv overrides c with GRPC_* and PARSER_* variables.
func (c *ServiceConfig) ApplyEnv() error {
	if v, ok := EnvString("GRPC_HOST"); ok {
		c.Host = v
	}
	if err := applyInt("GRPC_PORT", &c.Port); err != nil {
		return err
	}
	if v, ok := EnvString("PARSER_STORE"); ok {
		c.Store = strings.ToLower(v)
	}
	if v, ok := EnvString("PARSER_STORE_PATH"); ok {
		c.StorePath = v
	}
	if v, ok := EnvString("PARSER_DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := EnvString("PARSER_TABLE"); ok {
		c.Table = v
	}
	if v, ok := EnvString("PARSER_ADMIN_ADDR"); ok {
		c.AdminAddr = v
	}
	if v, ok, err := EnvBool("PARSER_VERBOSE"); err != nil {
		return err
	} else if ok {
		c.Verbose = v
	}
	return nil
}

func applyInt(key string, dst *int) error {
	v, ok, err := EnvInt(key)
	if err != nil {
		return err
	}
	if ok {
		*dst = v
	}
	return nil
}

func applyDuration(key string, dst *time.Duration) error {
	v, ok, err := EnvDuration(key)
	if err != nil {
		return err
	}
	if ok {
		*dst = v
	}
	return nil
}
