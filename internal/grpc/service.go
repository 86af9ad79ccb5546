package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "portfolio.ContentService"

const (
	MethodGet       = "/" + ServiceName + "/Get"
	MethodList      = "/" + ServiceName + "/List"
	MethodWrite     = "/" + ServiceName + "/Write"
	MethodSubscribe = "/" + ServiceName + "/Subscribe"
)

// ContentServer is the service contract. Every message is a structpb.Struct.
type ContentServer interface {
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	List(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Write(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Subscribe(*structpb.Struct, gogrpc.ServerStream) error
}

func unary(method string, call func(ContentServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, gogrpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ContentServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ContentServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func subscribeHandler(srv any, stream gogrpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ContentServer).Subscribe(in, stream)
}

var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ContentServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "Get", Handler: unary(MethodGet, ContentServer.Get)},
		{MethodName: "List", Handler: unary(MethodList, ContentServer.List)},
		{MethodName: "Write", Handler: unary(MethodWrite, ContentServer.Write)},
	},
	Streams: []gogrpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "portfolio/content.proto",
}

// Client is the caller side of ContentService.
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Get(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGet, in)
}

func (c *Client) List(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodList, in)
}

func (c *Client) Write(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodWrite, in)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubscribeStream yields snapshots pushed by the server.
type SubscribeStream struct {
	gogrpc.ClientStream
}

func (s *SubscribeStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := s.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) Subscribe(ctx context.Context, in *structpb.Struct) (*SubscribeStream, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodSubscribe)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &SubscribeStream{ClientStream: stream}, nil
}
