package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type level string

const (
	levelLow  level = "low"
	levelHigh level = "high"
)

func TestNormalizer(t *testing.T) {
	n := New(map[string]level{"low": levelLow, "High": levelHigh})

	require.Equal(t, levelLow, n.Normalize("  LOW "))
	require.Equal(t, levelHigh, n.Normalize("high"))
	require.Equal(t, level(""), n.Normalize("medium"))

	_, ok := n.Lookup("medium")
	require.False(t, ok)
	require.Equal(t, []string{"high", "low"}, n.Keys())
}
