package cli

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/app-version/internal/logger"
	"github.com/oshokin/app-version/internal/service/common"
)

// dial connects to the configured server, identifying the current user.
func (c *Command) dial(ctx context.Context) (*common.Client, error) {
	opts := []common.Option{common.WithCallTimeout(c.settings.Timeout)}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Cannot detect actor, calling anonymously", "error", err)
	} else {
		opts = append(opts, common.WithActor(actor))
	}

	return common.Dial(ctx, c.settings.ServerAddress, opts...)
}

// withClient runs fn with a connected client.
func (c *Command) withClient(ctx context.Context, fn func(*common.Client) error) error {
	client, err := c.dial(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(client)
}

// RemoteShow prints a format rendered by the server.
func (c *Command) RemoteShow(ctx context.Context, name string) error {
	return c.withClient(ctx, func(client *common.Client) error {
		value, err := client.Format(ctx, name)
		if err != nil {
			return err
		}

		c.printf("%s\n", value)

		return nil
	})
}

// RemoteIncrement increments part on the server.
func (c *Command) RemoteIncrement(ctx context.Context, part string, by *int64) error {
	return c.withClient(ctx, func(client *common.Client) error {
		result, err := client.Increment(ctx, part, by)
		if err != nil {
			return err
		}

		c.printf("%s\n", result.Value)
		c.printVersion(result.Version)

		return nil
	})
}

// RemoteAbsorb asks the server to absorb version data from git.
func (c *Command) RemoteAbsorb(ctx context.Context) error {
	return c.withClient(ctx, func(client *common.Client) error {
		full, err := client.Absorb(ctx)
		if err != nil {
			return err
		}

		c.printVersion(full)

		return nil
	})
}

// RemoteRecord prints the server record as YAML.
func (c *Command) RemoteRecord(ctx context.Context) error {
	return c.withClient(ctx, func(client *common.Client) error {
		snapshot, err := client.Record(ctx)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}

		c.printf("%s", data)

		return nil
	})
}
