// Package srchtml renders Java sources as highlighted HTML pages with line
// anchors under <out>/src-html/<module>/<package path>/<File>.html.
package srchtml

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/text/encoding/htmlindex"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Dir is the directory below the documentation root holding rendered sources.
const Dir = "src-html"

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Options controls Render.
type Options struct {
	// OutputDir is the documentation root.
	OutputDir string
	// Module names the subdirectory below src-html.
	Module string
	// Encoding of the source files, by WHATWG or IANA name.
	Encoding string
	Style    string
	// Substitute, when set, rewrites the raw file content before decoding.
	Substitute func([]byte) []byte
}

// PagePath returns the slash separated path, relative to the documentation
// root, of the rendered page for a source path such as "io/jenetics/Foo.java".
func PagePath(module, sourcePath string) string {
	sourcePath = filepath.ToSlash(sourcePath)
	return path.Join(Dir, module, strings.TrimSuffix(sourcePath, path.Ext(sourcePath))+".html")
}

// Render converts every .java file under roots. It returns the number of
// rendered pages.
func Render(ctx context.Context, roots []string, opts Options) (int, error) {
	if opts.Module == "" {
		return 0, errors.DocsError("source rendering requires a module name").Build()
	}
	enc, err := htmlindex.Get(defaultString(opts.Encoding, "UTF-8"))
	if err != nil {
		return 0, errors.DocsError("unsupported source encoding").
			WithContext("encoding", opts.Encoding).WithCause(err).Build()
	}
	lexer := lexers.Get("java")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(defaultString(opts.Style, DefaultStyle))
	formatter := chromahtml.New(
		chromahtml.Standalone(true),
		chromahtml.WithLineNumbers(true),
		chromahtml.WithLinkableLineNumbers(true, "line"),
	)

	count := 0
	for _, root := range roots {
		if _, statErr := os.Stat(root); os.IsNotExist(statErr) {
			continue
		}
		walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".java") {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			if opts.Substitute != nil {
				raw = opts.Substitute(raw)
			}
			text, err := enc.NewDecoder().Bytes(raw)
			if err != nil {
				return errors.DocsError("cannot decode source file").WithContext("path", p).WithCause(err).Build()
			}
			it, err := lexer.Tokenise(nil, string(text))
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := formatter.Format(&buf, style, it); err != nil {
				return err
			}
			out := filepath.Join(opts.OutputDir, filepath.FromSlash(PagePath(opts.Module, rel)))
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			count++
			return nil
		})
		if walkErr != nil {
			if errors.IsClassified(walkErr) {
				return count, walkErr
			}
			return count, errors.DocsError("source rendering failed").WithContext("root", root).WithCause(walkErr).Build()
		}
	}
	return count, nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
