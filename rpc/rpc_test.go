package rpc

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aluiziolira/bookparse/models"
	"github.com/aluiziolira/bookparse/parser/parsertest"
	"github.com/aluiziolira/bookparse/service"
	"github.com/aluiziolira/bookparse/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, p Parser, opts ...grpc.ServerOption) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(opts...)
	Register(srv, p)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", 5*time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newService(t *testing.T, metrics *service.Metrics) *service.Service {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "parsed_books.json"))
	svc, err := service.New(context.Background(), service.NewMemoryKeySet(), store, service.WithMetrics(metrics))
	require.NoError(t, err)
	return svc
}

func TestParseBookRoundTrip(t *testing.T) {
	metrics := service.NewMetrics()
	client := startServer(t, newService(t, metrics),
		grpc.UnaryInterceptor(UnaryServerInterceptor(metrics, nil)))

	html := parsertest.DetailPage("a897fe39b1053632", "A Light in the Attic")

	first, err := client.ParseBook(context.Background(), html)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, first.Status)
	require.Equal(t, "A Light in the Attic", first.Book.Name)
	require.Equal(t, "51.77", first.Book.PriceExclTax.String())
	require.Equal(t, "In stock (22 available)", first.Book.Availability)

	second, err := client.ParseBook(context.Background(), html)
	require.NoError(t, err)
	require.Equal(t, models.StatusDuplicate, second.Status)

	invalid, err := client.ParseBook(context.Background(), "<html></html>")
	require.NoError(t, err)
	require.Equal(t, models.StatusInvalid, invalid.Status)
	require.NotEmpty(t, invalid.Reason)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(codes.OK.String())))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(codes.AlreadyExists.String())))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(codes.InvalidArgument.String())))
}

func TestParseBookConcurrentDuplicatesOverGRPC(t *testing.T) {
	client := startServer(t, newService(t, nil))
	html := parsertest.DetailPage("shared", "Shared Book")

	const callers = 8
	statuses := make([]models.ParseStatus, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := client.ParseBook(context.Background(), html)
			statuses[i], errs[i] = r.Status, err
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i := range statuses {
		require.NoError(t, errs[i])
		if statuses[i] == models.StatusAccepted {
			accepted++
		} else {
			require.Equal(t, models.StatusDuplicate, statuses[i])
		}
	}
	require.Equal(t, 1, accepted)
}

func TestParseBookTransportErrorIsReturned(t *testing.T) {
	client := startServer(t, nil, grpc.UnaryInterceptor(
		func(context.Context, any, *grpc.UnaryServerInfo, grpc.UnaryHandler) (any, error) {
			return nil, status.Error(codes.Unavailable, "draining")
		}))

	_, err := client.ParseBook(context.Background(), parsertest.DetailPage("x", "X"))
	require.Error(t, err)
	require.Equal(t, codes.Unavailable, status.Code(err))
}

type emptyParser struct{}

func (emptyParser) ParseBook(context.Context, string) models.ParseResult {
	return models.ParseResult{Status: models.StatusAccepted}
}

func TestParseBookEmptyResponseIsPermanent(t *testing.T) {
	client := startServer(t, emptyParser{})

	_, err := client.ParseBook(context.Background(), parsertest.DetailPage("x", "X"))
	require.ErrorIs(t, err, ErrEmptyResponse)

	var p interface{ Permanent() bool }
	require.ErrorAs(t, err, &p)
	require.True(t, p.Permanent())
}
