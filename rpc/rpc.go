// Package rpc exposes the parser service over gRPC.
//
// Messages are plain Go structs carried by a JSON codec registered under the
// "json" content subtype, so no generated protobuf code is needed. Duplicate
// and invalid pages travel as codes.AlreadyExists and codes.InvalidArgument.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/aluiziolira/bookparse/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "bookparser.BookParserService"
	// ParseBookMethod is the full method name of the ParseBook RPC.
	ParseBookMethod = "/" + ServiceName + "/ParseBook"

	codecName = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

// ParseBookRequest carries a raw detail page.
type ParseBookRequest struct {
	HTML string `json:"html"`
}

// ParseBookResponse carries the accepted record.
type ParseBookResponse struct {
	Book *models.Book `json:"book"`
}

// BookParserServer is the server API of the ParseBook service.
type BookParserServer interface {
	ParseBook(context.Context, *ParseBookRequest) (*ParseBookResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ParseBook",
			Handler:    parseBookHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "book_parser.proto",
}

func parseBookHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ParseBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookParserServer).ParseBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ParseBookMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookParserServer).ParseBook(ctx, req.(*ParseBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}
