//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"

	api "github.com/oshokin/app-version/internal/api/grpc/version"
)

// DetectActor gathers host and user information for the audit trail.
func DetectActor() (api.Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return api.Actor{}, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return api.Actor{}, fmt.Errorf("current user: %w", err)
	}

	return api.Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
