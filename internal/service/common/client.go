//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/app-version/internal/api/grpc/version"
	"github.com/oshokin/app-version/internal/config"
)

// Client wraps the gRPC version service client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the version server.
	conn *grpc.ClientConn
	// api is the VersionService client stub.
	api *api.VersionServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is sent with every call.
	actor api.Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the identity sent with every call.
func WithActor(actor api.Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Increment is the result of a remote increment.
type Increment struct {
	// Value is the new value of the incremented part.
	Value string
	// Version is the default format after the increment.
	Version string
}

// Dial establishes a gRPC connection to the version server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial version server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewVersionServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Format renders a named format on the server.
func (c *Client) Format(ctx context.Context, name string) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Format(callCtx, wrapperspb.String(name))
	if err != nil {
		return "", fmt.Errorf("format %s: %w", name, err)
	}

	return resp.GetValue(), nil
}

// Increment increments part on the server. by only applies to commit increments.
func (c *Client) Increment(ctx context.Context, part string, by *int64) (*Increment, error) {
	fields := map[string]*structpb.Value{
		api.FieldPart: structpb.NewStringValue(part),
	}

	if by != nil {
		fields[api.FieldBy] = structpb.NewNumberValue(float64(*by))
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Increment(callCtx, &structpb.Struct{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", part, err)
	}

	return &Increment{
		Value:   resp.GetFields()[api.FieldValue].GetStringValue(),
		Version: resp.GetFields()[api.FieldVersion].GetStringValue(),
	}, nil
}

// Absorb asks the server to absorb version data from git and returns the default format.
func (c *Client) Absorb(ctx context.Context) (string, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Absorb(callCtx, new(emptypb.Empty))
	if err != nil {
		return "", fmt.Errorf("absorb: %w", err)
	}

	return resp.GetValue(), nil
}

// Record fetches the whole version record.
func (c *Client) Record(ctx context.Context) (map[string]any, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Record(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}

	return resp.AsMap(), nil
}

// Timestamp fetches the recorded timestamp.
func (c *Client) Timestamp(ctx context.Context) (time.Time, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Timestamp(callCtx, new(emptypb.Empty))
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: %w", err)
	}

	return resp.AsTime(), nil
}

// callContext returns a context carrying the actor and the client's call
// timeout if configured, otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = api.AppendActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
