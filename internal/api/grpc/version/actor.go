package version

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

// ActorMetadataKey carries the caller identity as user@host.
const ActorMetadataKey = "x-app-version-actor"

// anonymous is logged when a caller does not identify itself.
const anonymous = "anonymous"

// Actor identifies who asked for a change.
type Actor struct {
	Username string
	Hostname string
}

// String renders the actor as user@host.
func (a Actor) String() string {
	switch {
	case a.Username == "" && a.Hostname == "":
		return anonymous
	case a.Hostname == "":
		return a.Username
	default:
		return a.Username + "@" + a.Hostname
	}
}

// ParseActor reads an actor rendered by String.
func ParseActor(value string) Actor {
	value = strings.TrimSpace(value)
	if value == "" || value == anonymous {
		return Actor{}
	}

	username, hostname, _ := strings.Cut(value, "@")

	return Actor{Username: username, Hostname: hostname}
}

// AppendActor attaches the actor to outgoing call metadata.
func AppendActor(ctx context.Context, actor Actor) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor.String())
}

// ActorFromContext returns the actor of an incoming call.
func ActorFromContext(ctx context.Context) Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Actor{}
	}

	values := md.Get(ActorMetadataKey)
	if len(values) == 0 {
		return Actor{}
	}

	return ParseActor(values[0])
}
