package buildenv

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCaptureUsesOverrides(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	env := Capture(Options{Now: now, CopyrightSince: 2022, JDK: "17.0.2", User: "franz"})

	require.Equal(t, now, env.Now())
	require.Equal(t, 2026, env.Year())
	require.Equal(t, "2022-2026", env.CopyrightYear())
	require.Equal(t, "2026-03-04 05:06", env.BuildDate())
	require.Equal(t, "17.0.2", env.JDK())
	require.Equal(t, "franz", env.User())
	require.Equal(t, runtime.GOARCH, env.OSArch())
	require.NotEmpty(t, env.OSName())
	require.NotEmpty(t, env.OSVersion())
}

func TestCaptureDefaults(t *testing.T) {
	env := Capture(Options{})
	require.False(t, env.Now().IsZero())
	require.Equal(t, "unknown", env.JDK())
	require.NotEmpty(t, env.User())
}

func TestCopyrightYears(t *testing.T) {
	require.Equal(t, "2022-2026", CopyrightYears(2022, 2026))
	require.Equal(t, "2026", CopyrightYears(2026, 2026))
	require.Equal(t, "2026", CopyrightYears(0, 2026))
	require.Equal(t, "2026", CopyrightYears(2030, 2026))
}
