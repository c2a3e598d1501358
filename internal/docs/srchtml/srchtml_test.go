package srchtml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const javaSource = `package io.jenetics.lattices;

/** Grid. */
public final class Grid {
    private final int size = 3;
}
`

func TestPagePath(t *testing.T) {
	require.Equal(t, "src-html/io.jenetics.lattices/io/jenetics/lattices/Grid.html",
		PagePath("io.jenetics.lattices", filepath.Join("io", "jenetics", "lattices", "Grid.java")))
}

func TestRenderWritesHighlightedPages(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	pkg := filepath.Join(src, "io", "jenetics", "lattices")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "Grid.java"), []byte(javaSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "notes.txt"), []byte("ignored"), 0o644))

	n, err := Render(t.Context(), []string{src, filepath.Join(src, "missing")}, Options{OutputDir: out, Module: "io.jenetics.lattices"})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	page, err := os.ReadFile(filepath.Join(out, "src-html", "io.jenetics.lattices", "io", "jenetics", "lattices", "Grid.html"))
	require.NoError(t, err)
	html := string(page)
	require.True(t, strings.HasPrefix(strings.TrimSpace(html), "<html>"))
	require.Contains(t, html, `id="line1"`)
	require.Contains(t, html, `href="#line5"`)
	require.Contains(t, html, "Grid")
}

func TestRenderDecodesConfiguredEncoding(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	encoded, err := charmap.ISO8859_1.NewEncoder().String("class Café {}\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(src, "Cafe.java"), []byte(encoded), 0o644))

	_, err = Render(t.Context(), []string{src}, Options{OutputDir: out, Module: "m", Encoding: "ISO-8859-1"})
	require.NoError(t, err)
	page, err := os.ReadFile(filepath.Join(out, "src-html", "m", "Cafe.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "Café")
}

func TestRenderRejectsUnknownEncoding(t *testing.T) {
	_, err := Render(t.Context(), []string{t.TempDir()}, Options{OutputDir: t.TempDir(), Module: "m", Encoding: "klingon"})
	require.Error(t, err)
}

func TestRenderRequiresModule(t *testing.T) {
	_, err := Render(t.Context(), nil, Options{OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestRenderAppliesSubstitution(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "Grid.java"), []byte("// (@__identifier__@)\nclass Grid {}\n"), 0o644))

	_, err := Render(t.Context(), []string{src}, Options{
		OutputDir: out,
		Module:    "m",
		Substitute: func(b []byte) []byte {
			return []byte(strings.ReplaceAll(string(b), "@__identifier__@", "lattices-1.0"))
		},
	})
	require.NoError(t, err)
	page, err := os.ReadFile(filepath.Join(out, "src-html", "m", "Grid.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "lattices-1.0")
	require.NotContains(t, string(page), "@__identifier__@")
}
