package version

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "appversion.v1.VersionService"

// Full method names, as seen by interceptors.
const (
	FormatMethod    = "/" + ServiceName + "/Format"
	IncrementMethod = "/" + ServiceName + "/Increment"
	AbsorbMethod    = "/" + ServiceName + "/Absorb"
	RecordMethod    = "/" + ServiceName + "/Record"
	TimestampMethod = "/" + ServiceName + "/Timestamp"
)

// Increment request and response fields.
const (
	FieldPart    = "part"
	FieldBy      = "by"
	FieldValue   = "value"
	FieldVersion = "version"
)

// VersionServiceServer is the server API of the version service.
type VersionServiceServer interface {
	Format(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Increment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Absorb(ctx context.Context, req *emptypb.Empty) (*wrapperspb.StringValue, error)
	Record(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Timestamp(ctx context.Context, req *emptypb.Empty) (*timestamppb.Timestamp, error)
}

// RegisterVersionServiceServer registers srv on s.
func RegisterVersionServiceServer(s grpc.ServiceRegistrar, srv VersionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the version service for grpc.Server.
//
//nolint:gochecknoglobals // grpc.ServiceRegistrar takes the descriptor by pointer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VersionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Format", Handler: formatHandler},
		{MethodName: "Increment", Handler: incrementHandler},
		{MethodName: "Absorb", Handler: absorbHandler},
		{MethodName: "Record", Handler: recordHandler},
		{MethodName: "Timestamp", Handler: timestampHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "appversion/v1/version.proto",
}

// unary decodes the request into req and runs call through the interceptor chain.
func unary[Req any, Resp any](
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
	fullMethod string,
	srv any,
	req *Req,
	call func(VersionServiceServer, context.Context, *Req) (*Resp, error),
) (any, error) {
	if err := dec(req); err != nil {
		return nil, err
	}

	server, _ := srv.(VersionServiceServer)

	if interceptor == nil {
		return call(server, ctx, req)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		typed, _ := req.(*Req)

		return call(server, ctx, typed)
	}

	return interceptor(ctx, req, info, handler)
}

func formatHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, dec, interceptor, FormatMethod, srv, new(wrapperspb.StringValue), VersionServiceServer.Format)
}

func incrementHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, dec, interceptor, IncrementMethod, srv, new(structpb.Struct), VersionServiceServer.Increment)
}

func absorbHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, dec, interceptor, AbsorbMethod, srv, new(emptypb.Empty), VersionServiceServer.Absorb)
}

func recordHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, dec, interceptor, RecordMethod, srv, new(emptypb.Empty), VersionServiceServer.Record)
}

func timestampHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(ctx, dec, interceptor, TimestampMethod, srv, new(emptypb.Empty), VersionServiceServer.Timestamp)
}

// VersionServiceClient is the client API of the version service.
type VersionServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVersionServiceClient creates a client over cc.
func NewVersionServiceClient(cc grpc.ClientConnInterface) *VersionServiceClient {
	return &VersionServiceClient{cc: cc}
}

// Format renders a named format on the server.
func (c *VersionServiceClient) Format(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, FormatMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Increment increments a version part on the server.
func (c *VersionServiceClient) Increment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IncrementMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Absorb absorbs version data from git on the server.
func (c *VersionServiceClient) Absorb(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, AbsorbMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Record fetches the whole version record.
func (c *VersionServiceClient) Record(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RecordMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// Timestamp fetches the recorded timestamp.
func (c *VersionServiceClient) Timestamp(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*timestamppb.Timestamp, error) {
	out := new(timestamppb.Timestamp)
	if err := c.cc.Invoke(ctx, TimestampMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
