package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/bookparse/config"
	"github.com/aluiziolira/bookparse/parser/parsertest"
	"github.com/aluiziolira/bookparse/service"
	"github.com/aluiziolira/bookparse/storage"
)

func TestAdminRouter(t *testing.T) {
	ctx := context.Background()
	metrics := service.NewMetrics()
	svc, err := service.New(ctx, service.NewMemoryKeySet(),
		storage.NewFileStore(filepath.Join(t.TempDir(), "parsed.json")),
		service.WithMetrics(metrics))
	require.NoError(t, err)
	svc.ParseBook(ctx, parsertest.DetailPage(parsertest.UPC(1), "Book 1"))

	srv := httptest.NewServer(adminRouter(metrics, svc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "seen_keys=1")

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `parser_outcomes_total{outcome="accepted"} 1`)
}

func TestOpenStoreDefaultsToFile(t *testing.T) {
	cfg := config.DefaultServiceConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "parsed.json")

	store, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	fs, ok := store.(*storage.FileStore)
	require.True(t, ok)
	require.Equal(t, cfg.StorePath, fs.Path())
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
