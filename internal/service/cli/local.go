package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	domain "github.com/oshokin/app-version/internal/domain/version"
	"github.com/oshokin/app-version/internal/logger"
	service "github.com/oshokin/app-version/internal/service/version"
	"github.com/oshokin/app-version/internal/template"
)

// Show prints a named format, or the default one when name is empty.
func (c *Command) Show(ctx context.Context, name string) error {
	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	value, ok := manager.Format(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrFormatNotFound, name)
	}

	c.printf("%s\n", value)

	return nil
}

// Current prints the version format.
func (c *Command) Current(ctx context.Context) error {
	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	c.printf("%s\n", manager.Current())

	return nil
}

// ShowTimestamp prints the stored timestamp without changing it.
func (c *Command) ShowTimestamp(ctx context.Context) error {
	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	stamp, ok := manager.Timestamp()
	if !ok {
		return ErrTimestampNotSet
	}

	c.printf("%s\n", stamp.Format(time.RFC3339))

	return nil
}

// Formats prints every format with its template and rendered value.
func (c *Command) Formats(ctx context.Context) error {
	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.AppendHeader(table.Row{"Format", "Template", "Value"})

	for _, name := range manager.Formats() {
		tmpl, _ := manager.Template(name)
		value, _ := manager.Format(name)

		t.AppendRow(table.Row{name, tmpl, value})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	return nil
}

// Increment bumps part, printing the new value and the full version.
// A field in absorb mode is refused before the record is read for writing.
func (c *Command) Increment(ctx context.Context, part domain.Part, by *int64) error {
	ctx = logger.WithKV(ctx, "part", string(part))

	return c.mutate(ctx, func(manager *service.Manager) error {
		if manager.IsInAbsorbMode(part.Field()) {
			return &domain.AbsorbModeError{Field: part.Field()}
		}

		value, err := manager.Increment(ctx, part, by)
		if err != nil {
			return err
		}

		full, _ := manager.Format(service.DefaultFormat)

		c.printf("%s\n", value)
		c.printVersion(full)

		return nil
	})
}

// Absorb pulls version data from git and prints the full version.
func (c *Command) Absorb(ctx context.Context) error {
	return c.mutate(ctx, func(manager *service.Manager) error {
		if err := manager.Absorb(ctx); err != nil {
			return err
		}

		full, _ := manager.Format(service.DefaultFormat)
		c.printVersion(full)

		return nil
	})
}

// Render executes a text/template file with the version function.
// An empty output writes to the command output.
func (c *Command) Render(ctx context.Context, templatePath, output string) error {
	contents, err := os.ReadFile(filepath.Clean(templatePath))
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	manager, err := c.open(ctx)
	if err != nil {
		return err
	}

	data := map[string]any{
		"AppName": c.settings.AppName,
		"Version": manager.Current(),
	}

	if output == "" {
		return template.Render(c.out, filepath.Base(templatePath), string(contents), manager, data)
	}

	file, err := os.Create(filepath.Clean(output))
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	renderErr := template.Render(file, filepath.Base(templatePath), string(contents), manager, data)
	if closeErr := file.Close(); renderErr == nil && closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return renderErr
}
