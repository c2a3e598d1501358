package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func facts() Facts {
	return Facts{
		Title:          "Lattices",
		Version:        "2.0.0",
		URL:            "https://github.com/jenetics/lattices",
		Vendor:         "Lattices",
		Maintainer:     "Franz Wilhelmstötter",
		Project:        "linealgebra",
		ProjectVersion: "2.0.0",
		CreatedWith:    "jbuild 1.0.0",
		BuiltBy:        "franz",
		BuildDate:      "2026-01-02 03:04",
		JDK:            "17.0.2",
		OSName:         "Linux",
		OSArch:         "amd64",
		OSVersion:      "6.1.0",
	}
}

func TestStandardKeyOrder(t *testing.T) {
	a, err := Standard(facts())
	require.NoError(t, err)
	require.Equal(t, []string{
		"Implementation-Title", "Implementation-Version", "Implementation-URL", "Implementation-Vendor",
		"ProjectName", "Version", "Maintainer", "Project", "Project-Version", "Created-With",
		"Built-By", "Build-Date", "Build-JDK", "Build-OS-Name", "Build-OS-Arch", "Build-OS-Version",
	}, a.Keys())
	_, ok := a.Get(AutomaticModuleName)
	require.False(t, ok)

	f := facts()
	f.ModuleName = "io.jenetics.linealgebra"
	a, err = Standard(f)
	require.NoError(t, err)
	require.Equal(t, AutomaticModuleName, a.Keys()[a.Len()-1])
}

func TestStandardIsDeterministic(t *testing.T) {
	a, err := Standard(facts())
	require.NoError(t, err)
	b, err := Standard(facts())
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Encode(), b.Encode())
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	_, err := New(Attribute{"A", "1"}, Attribute{"A", "2"})
	require.Error(t, err)
	_, err = New(Attribute{"Bad Key", "1"})
	require.Error(t, err)
	_, err = New(Attribute{"Key", "line\nbreak"})
	require.Error(t, err)
}

func TestEncodeWrapsAt72Bytes(t *testing.T) {
	long := strings.Repeat("x", 200)
	a, err := New(Attribute{"Implementation-URL", long}, Attribute{"Maintainer", strings.Repeat("ö", 60)})
	require.NoError(t, err)
	out := string(a.Encode())

	require.True(t, strings.HasPrefix(out, "Manifest-Version: 1.0\r\n"))
	require.True(t, strings.HasSuffix(out, "\r\n\r\n"))
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n\r\n"), "\r\n") {
		require.LessOrEqual(t, len(line), 72, line)
		require.True(t, strings.ToValidUTF8(line, "?") == line, "split inside a rune: %q", line)
	}

	back, err := Decode(a.Encode())
	require.NoError(t, err)
	v, _ := back.Get("Implementation-URL")
	require.Equal(t, long, v)
	v, _ = back.Get("Maintainer")
	require.Equal(t, strings.Repeat("ö", 60), v)
}

func TestAllIteratesInOrder(t *testing.T) {
	a, err := New(Attribute{"B", "2"}, Attribute{"A", "1"})
	require.NoError(t, err)
	var keys []string
	for k := range a.All() {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"B", "A"}, keys)
}
