package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/aluiziolira/bookparse/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// ErrEmptyResponse is returned when the service answers OK without a record.
// It reports itself as permanent, so callers that retry stop at it.
var ErrEmptyResponse error = emptyResponseError{}

type emptyResponseError struct{}

func (emptyResponseError) Error() string { return "parse book: empty response" }
func (emptyResponseError) Permanent() bool { return true }

// Client calls a remote BookParserService.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// Dial creates a client for addr. timeout bounds each call; zero disables it.
// Extra options are appended after the defaults.
func Dial(addr string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial parser service %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// ParseBook sends html to the service. Duplicate and invalid pages come back
// as result variants with a nil error; only transport-level failures return
// an error.
func (c *Client) ParseBook(ctx context.Context, html string) (models.ParseResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp := new(ParseBookResponse)
	err := c.conn.Invoke(ctx, ParseBookMethod, &ParseBookRequest{HTML: html}, resp)
	if err == nil {
		if resp.Book == nil {
			return models.ParseResult{}, ErrEmptyResponse
		}
		return models.Accepted(resp.Book), nil
	}

	st := status.Convert(err)
	switch st.Code() {
	case codes.AlreadyExists:
		return models.Duplicate(), nil
	case codes.InvalidArgument:
		return models.Invalid(st.Message()), nil
	}
	return models.ParseResult{}, fmt.Errorf("parse book: %w", err)
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
