package version

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
)

// defaultFormat is rendered by Absorb and returned with increments.
const defaultFormat = "full"

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Format(name string) (string, bool)
	Increment(ctx context.Context, part domain.Part, by *int64) (string, error)
	Absorb(ctx context.Context) error
	Snapshot() (map[string]any, error)
	Timestamp() (time.Time, bool)
}

// Server implements the version gRPC API.
type Server struct {
	// service provides the version operations.
	service Service
}

var _ VersionServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// Format renders the requested format. An empty name renders the default format.
func (s *Server) Format(_ context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	value, ok := s.service.Format(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.NotFound, "format %q not found", req.GetValue())
	}

	return wrapperspb.String(value), nil
}

// Increment increments the requested part and returns the new value and default format.
func (s *Server) Increment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	fields := req.GetFields()

	part, err := domain.ParsePart(fields[FieldPart].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	by, err := incrementBy(fields[FieldBy])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	value, err := s.service.Increment(ctx, part, by)

	audit(ctx, IncrementMethod, err, "part", string(part), "value", value)

	if err != nil {
		return nil, toStatus(err)
	}

	full, _ := s.service.Format(defaultFormat)

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldValue:   structpb.NewStringValue(value),
		FieldVersion: structpb.NewStringValue(full),
	}}, nil
}

// Absorb pulls version data from git and returns the default format.
func (s *Server) Absorb(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	err := s.service.Absorb(ctx)

	audit(ctx, AbsorbMethod, err)

	if err != nil {
		return nil, toStatus(err)
	}

	full, _ := s.service.Format(defaultFormat)

	return wrapperspb.String(full), nil
}

// Record returns the whole version record.
func (s *Server) Record(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, err := s.service.Snapshot()
	if err != nil {
		return nil, toStatus(err)
	}

	record, err := structpb.NewStruct(normalizeMap(snapshot))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode record: %v", err)
	}

	return record, nil
}

// Timestamp returns the recorded timestamp.
func (s *Server) Timestamp(_ context.Context, _ *emptypb.Empty) (*timestamppb.Timestamp, error) {
	moment, ok := s.service.Timestamp()
	if !ok {
		return nil, status.Error(codes.NotFound, "timestamp is not recorded")
	}

	return timestamppb.New(moment), nil
}

// audit logs a mutation with the caller identity. It stays visible at the default warn level.
func audit(ctx context.Context, method string, err error, kvs ...any) {
	auditLogger := logger.FromContext(ctx).
		WithOptions(logger.WithLevel(zapcore.InfoLevel)).
		With("actor", ActorFromContext(ctx).String(), "method", method)

	if err != nil {
		auditLogger.Warnw("Request rejected", append(kvs, zap.Error(err))...)

		return
	}

	auditLogger.Infow("Request applied", kvs...)
}

// incrementBy reads the optional delta of a commit increment.
func incrementBy(value *structpb.Value) (*int64, error) {
	if value == nil {
		return nil, nil
	}

	switch kind := value.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_NumberValue:
		number := kind.NumberValue
		if number != math.Trunc(number) || math.Abs(number) > math.MaxInt64/2 {
			return nil, fmt.Errorf("%s must be an integer, got %v", FieldBy, number)
		}

		by := int64(number)

		return &by, nil
	default:
		return nil, fmt.Errorf("%s must be a number", FieldBy)
	}
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAbsorbModeConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrGitTagNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrMethodNotFound), errors.Is(err, domain.ErrInvalidIncrement):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// normalizeMap converts decoded YAML into values structpb accepts.
func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = normalize(value)
	}

	return out
}

func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return normalizeMap(typed)
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[fmt.Sprint(key)] = normalize(item)
		}

		return converted
	case []any:
		converted := make([]any, len(typed))
		for i, item := range typed {
			converted[i] = normalize(item)
		}

		return converted
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	case nil, bool, string, int, int32, int64, uint, uint32, uint64, float32, float64:
		return typed
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
