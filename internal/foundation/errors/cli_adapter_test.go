package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"duplicate project", ProjectError("duplicate").Build(), 3},
		{"config", ConfigError("bad config").Build(), 7},
		{"events", EventsError("nats down").Build(), 8},
		{"signing", SigningError("no key").Build(), 9},
		{"docs", DocsError("javadoc failed").Build(), 11},
		{"internal", InternalError("bug").Build(), 10},
		{"unclassified", errors.New("unknown error"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	require.Empty(t, quiet.FormatError(nil))
	require.Contains(t, quiet.FormatError(InternalError("internal issue").Build()), "use -v")
	require.Equal(t, "Error: missing library.version", quiet.FormatError(ConfigError("missing library.version").Build()))
	require.Contains(t, verbose.FormatError(DocsError("javadoc failed").WithProject("lattices").Build()), "[docs:lattices]")
	require.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
}

func TestHandleError(t *testing.T) {
	var out bytes.Buffer
	code := -1
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("no projects included").Build())

	require.Equal(t, 7, code)
	require.Contains(t, out.String(), "no projects included")

	code = -1
	adapter.HandleError(nil)
	require.Equal(t, -1, code)
}
