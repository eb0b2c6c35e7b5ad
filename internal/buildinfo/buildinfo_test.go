package buildinfo

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), runtime.Version())
	require.NotEmpty(t, Get().Commit)
}

// TestVersionCommand verifies the attached subcommand prints build information.
func TestVersionCommand(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		args []string
		want string
	}{
		{args: []string{"version"}, want: Full()},
		{args: []string{"version", "--short"}, want: Short()},
	} {
		root := &cobra.Command{Use: "app-version"}
		AttachCobraVersionCommand(root)

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs(tt.args)

		require.NoError(t, root.Execute())
		require.Equal(t, tt.want, strings.TrimSpace(out.String()))
	}
}
