package logfields

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
	}{
		{RunID("r"), KeyRunID},
		{Project("p"), KeyProject},
		{Task("javadoc"), KeyTask},
		{Step("colorize"), KeyStep},
		{Path("/tmp"), KeyPath},
		{URL("http://x"), KeyURL},
		{Outcome("ok"), KeyOutcome},
		{DurationMS(1.5), KeyDurationMS},
	}
	for _, tc := range cases {
		require.Equal(t, tc.key, tc.attr.Key)
	}
}

func TestError(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}

func TestHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	log.Info("Task finished", Project("lattices"), Task("compile"), Outcome("succeeded"))
	require.Equal(t, "level=INFO msg=\"Task finished\" project=lattices task=compile outcome=succeeded\n", buf.String())
}
