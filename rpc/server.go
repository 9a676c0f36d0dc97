package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/aluiziolira/bookparse/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Parser is the domain operation served over gRPC.
type Parser interface {
	ParseBook(ctx context.Context, html string) models.ParseResult
}

// Register installs p as the BookParserService implementation on s.
func Register(s *grpc.Server, p Parser) {
	s.RegisterService(&serviceDesc, &parserServer{parser: p})
}

type parserServer struct {
	parser Parser
}

func (s *parserServer) ParseBook(ctx context.Context, req *ParseBookRequest) (*ParseBookResponse, error) {
	result := s.parser.ParseBook(ctx, req.HTML)
	switch result.Status {
	case models.StatusAccepted:
		return &ParseBookResponse{Book: result.Book}, nil
	case models.StatusDuplicate:
		return nil, status.Error(codes.AlreadyExists, "duplicate upc")
	default:
		return nil, status.Error(codes.InvalidArgument, result.Reason)
	}
}

// RequestObserver receives per-call measurements.
type RequestObserver interface {
	IncRequest(code string)
	ObserveDuration(d time.Duration)
}

// UnaryServerInterceptor logs every call and reports it to obs, which may be nil.
func UnaryServerInterceptor(obs RequestObserver, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)

		code := status.Code(err)
		if obs != nil {
			obs.IncRequest(code.String())
			obs.ObserveDuration(elapsed)
		}

		level := slog.LevelDebug
		switch code {
		case codes.OK, codes.AlreadyExists:
		case codes.InvalidArgument:
			level = slog.LevelWarn
		default:
			level = slog.LevelError
		}
		logger.Log(ctx, level, "grpc request",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("duration", elapsed),
		)
		return resp, err
	}
}
