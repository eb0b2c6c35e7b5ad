package version

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/app-version/internal/domain/version"
)

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	formats   map[string]string
	values    map[domain.Part]string
	err       error
	snapshot  map[string]any
	timestamp time.Time
	lastBy    *int64
}

func (f *fakeService) Format(name string) (string, bool) {
	if name == "" {
		name = "full"
	}

	value, ok := f.formats[name]

	return value, ok
}

func (f *fakeService) Increment(_ context.Context, part domain.Part, by *int64) (string, error) {
	f.lastBy = by

	if f.err != nil {
		return "", f.err
	}

	return f.values[part], nil
}

func (f *fakeService) Absorb(context.Context) error {
	return f.err
}

func (f *fakeService) Snapshot() (map[string]any, error) {
	return f.snapshot, f.err
}

func (f *fakeService) Timestamp() (time.Time, bool) {
	return f.timestamp, !f.timestamp.IsZero()
}

func newFakeService() *fakeService {
	return &fakeService{
		formats: map[string]string{
			"full":    "version 1.2.3 (commit abc)",
			"compact": "v1.2.3-abc",
		},
		values: map[domain.Part]string{
			domain.PartMajor:  "2",
			domain.PartCommit: "abd",
		},
	}
}

func incrementRequest(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()

	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return req
}

// TestServer_Format covers named, default and missing formats.
func TestServer_Format(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeService())

	resp, err := s.Format(context.Background(), wrapperspb.String("compact"))
	require.NoError(t, err)
	require.Equal(t, "v1.2.3-abc", resp.GetValue())

	resp, err = s.Format(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "version 1.2.3 (commit abc)", resp.GetValue())

	_, err = s.Format(context.Background(), wrapperspb.String("nope"))
	require.Equal(t, codes.NotFound, status.Code(err))
}

// TestServer_Increment_Validation ensures malformed requests return InvalidArgument.
func TestServer_Increment_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(newFakeService())

	_, err := s.Increment(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	for _, fields := range []map[string]any{
		{},
		{FieldPart: "build"},
		{FieldPart: "commit", FieldBy: 1.5},
		{FieldPart: "commit", FieldBy: "two"},
	} {
		_, err = s.Increment(context.Background(), incrementRequest(t, fields))
		require.Equal(t, codes.InvalidArgument, status.Code(err), fields)
	}
}

// TestServer_Increment returns the new value together with the default format.
func TestServer_Increment(t *testing.T) {
	t.Parallel()

	service := newFakeService()
	s := NewServer(service)

	resp, err := s.Increment(context.Background(), incrementRequest(t, map[string]any{FieldPart: "Major"}))
	require.NoError(t, err)
	require.Equal(t, "2", resp.GetFields()[FieldValue].GetStringValue())
	require.Equal(t, "version 1.2.3 (commit abc)", resp.GetFields()[FieldVersion].GetStringValue())
	require.Nil(t, service.lastBy)

	_, err = s.Increment(context.Background(), incrementRequest(t, map[string]any{FieldPart: "commit", FieldBy: -3}))
	require.NoError(t, err)
	require.NotNil(t, service.lastBy)
	require.Equal(t, int64(-3), *service.lastBy)
}

// TestServer_ErrorMapping verifies domain errors map to gRPC codes.
func TestServer_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: &domain.AbsorbModeError{Field: domain.FieldVersion}, want: codes.FailedPrecondition},
		{err: fmt.Errorf("absorb version: %w", domain.ErrGitTagNotFound), want: codes.NotFound},
		{err: domain.ErrInvalidIncrement, want: codes.InvalidArgument},
		{err: context.DeadlineExceeded, want: codes.DeadlineExceeded},
		{err: fmt.Errorf("save record: %w", errBoom), want: codes.Internal},
	}

	for _, tt := range tests {
		service := newFakeService()
		service.err = tt.err
		s := NewServer(service)

		_, err := s.Increment(context.Background(), incrementRequest(t, map[string]any{FieldPart: "patch"}))
		require.Equal(t, tt.want, status.Code(err), tt.err.Error())

		_, err = s.Absorb(context.Background(), new(emptypb.Empty))
		require.Equal(t, tt.want, status.Code(err), tt.err.Error())
	}
}

// TestServer_RecordAndTimestamp verifies the record is exported as a struct.
func TestServer_RecordAndTimestamp(t *testing.T) {
	t.Parallel()

	service := newFakeService()
	service.snapshot = map[string]any{
		"mode": "increment",
		"current": map[string]any{
			"major":  1,
			"commit": nil,
			"built":  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		"tags": []any{"a", 2},
	}
	s := NewServer(service)

	record, err := s.Record(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	current := record.GetFields()["current"].GetStructValue().GetFields()
	require.InDelta(t, 1, current["major"].GetNumberValue(), 0)
	require.Equal(t, "2024-01-02T03:04:05Z", current["built"].GetStringValue())

	_, err = s.Timestamp(context.Background(), new(emptypb.Empty))
	require.Equal(t, codes.NotFound, status.Code(err))

	service.timestamp = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	stamp, err := s.Timestamp(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)
	require.True(t, service.timestamp.Equal(stamp.AsTime()))
}

// TestActor covers rendering and parsing of the caller identity.
func TestActor(t *testing.T) {
	t.Parallel()

	require.Equal(t, "anonymous", Actor{}.String())
	require.Equal(t, "ci", Actor{Username: "ci"}.String())
	require.Equal(t, "ci@build-01", Actor{Username: "ci", Hostname: "build-01"}.String())
	require.Equal(t, Actor{Username: "ci", Hostname: "build-01"}, ParseActor(" ci@build-01 "))
	require.Equal(t, Actor{}, ParseActor("anonymous"))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, "dev@laptop"))
	require.Equal(t, Actor{Username: "dev", Hostname: "laptop"}, ActorFromContext(ctx))
	require.Equal(t, Actor{}, ActorFromContext(context.Background()))
}

// TestServiceDesc_Roundtrip calls every method through the hand-written descriptor and client.
func TestServiceDesc_Roundtrip(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 20)

	var seenMethods []string

	service := newFakeService()
	service.timestamp = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	service.snapshot = map[string]any{"mode": "increment"}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(
		func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			seenMethods = append(seenMethods, info.FullMethod)

			return handler(ctx, req)
		},
	))
	RegisterVersionServiceServer(server, NewServer(service))

	go func() { _ = server.Serve(listener) }()

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	ctx := AppendActor(context.Background(), Actor{Username: "dev", Hostname: "laptop"})
	client := NewVersionServiceClient(conn)

	formatted, err := client.Format(ctx, wrapperspb.String("compact"))
	require.NoError(t, err)
	require.Equal(t, "v1.2.3-abc", formatted.GetValue())

	incremented, err := client.Increment(ctx, incrementRequest(t, map[string]any{FieldPart: "commit"}))
	require.NoError(t, err)
	require.Equal(t, "abd", incremented.GetFields()[FieldValue].GetStringValue())

	absorbed, err := client.Absorb(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, "version 1.2.3 (commit abc)", absorbed.GetValue())

	record, err := client.Record(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, "increment", record.GetFields()["mode"].GetStringValue())

	stamp, err := client.Timestamp(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.True(t, service.timestamp.Equal(stamp.AsTime()))

	require.Equal(t, []string{FormatMethod, IncrementMethod, AbsorbMethod, RecordMethod, TimestampMethod}, seenMethods)
}

var errBoom = errors.New("boom")
