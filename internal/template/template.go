// Package template exposes version formats to text/template.
//
//	Release {{ version "release" }} built from {{ version "commit" }}
//
// An empty name renders the default format.
package template

import (
	"errors"
	"fmt"
	"io"
	"text/template"
)

// FuncName is the template function that renders a version format.
const FuncName = "version"

// ErrFormatNotFound is returned by the template function for unknown formats.
var ErrFormatNotFound = errors.New("version format not found")

// Formatter renders named version formats.
type Formatter interface {
	Format(name string) (string, bool)
}

// FuncMap returns the functions to register on a template.
func FuncMap(formatter Formatter) template.FuncMap {
	return template.FuncMap{
		FuncName: func(names ...string) (string, error) {
			var name string
			if len(names) > 0 {
				name = names[0]
			}

			value, ok := formatter.Format(name)
			if !ok {
				return "", fmt.Errorf("%w: %q", ErrFormatNotFound, name)
			}

			return value, nil
		},
	}
}

// Render parses text as a template named name and executes it into w.
func Render(w io.Writer, name, text string, formatter Formatter, data any) error {
	tmpl, err := template.New(name).Funcs(FuncMap(formatter)).Option("missingkey=error").Parse(text)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}

	return nil
}
