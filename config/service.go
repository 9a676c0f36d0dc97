package config

import (
	"fmt"
	"net"
	"strconv"
)

// Store backends supported by the parser service.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// ServiceConfig holds parser service configuration.
type ServiceConfig struct {
	Host        string
	Port        int
	Store       string
	StorePath   string
	DatabaseURL string
	Table       string
	AdminAddr   string
	Verbose     bool
}

// DefaultServiceConfig returns the parser service defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		Host:      "0.0.0.0",
		Port:      50051,
		Store:     StoreFile,
		StorePath: "parsed_books.json",
		Table:     "books",
		AdminAddr: ":9091",
	}
}

// ListenAddr joins host and port.
func (c *ServiceConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate ensures all configuration values are coherent.
func (c *ServiceConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	switch c.Store {
	case StoreFile:
		if c.StorePath == "" {
			return fmt.Errorf("store path cannot be empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("store must be %s or %s", StoreFile, StorePostgres)
	}
	return nil
}
