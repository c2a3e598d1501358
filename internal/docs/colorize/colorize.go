// Package colorize decorates generated javadoc pages in place: Java code in
// <pre> blocks is wrapped in highlighting spans and type pages gain a link to
// their rendered source page.
package colorize

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/jbuild/internal/docs/srchtml"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

const (
	// MarkerAttr is set on <body> of every decorated page.
	MarkerAttr = "data-colorized"
	// Stylesheet is written at the documentation root.
	Stylesheet = "jbuild-highlight.css"
	// SourceLinkClass marks the inserted source link container.
	SourceLinkClass = "jbuild-source-link"
)

// Options controls Dir.
type Options struct {
	// Module is the source module directory below src-html.
	Module string
	// SourceLinks adds "Source" links to type pages.
	SourceLinks bool
	Style       string
}

// Stats summarizes one pass.
type Stats struct {
	Scanned   int
	Rewritten int
	Unchanged int
}

// Dir rewrites every *.html file below root, excluding the src-html tree.
// Symlinks are not followed and nothing outside root is written.
func Dir(ctx context.Context, root string, opts Options) (Stats, error) {
	var stats Stats
	c, err := newColorizer(opts)
	if err != nil {
		return stats, err
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return stats, errors.DocsError("documentation output directory missing").WithContext("path", root).Build()
	}
	if err := c.writeStylesheet(root); err != nil {
		return stats, err
	}

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == srchtml.Dir {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}
		stats.Scanned++
		changed, err := c.file(p, rel)
		if err != nil {
			return errors.DocsError("cannot colorize page").WithContext("path", rel).WithCause(err).Build()
		}
		if changed {
			stats.Rewritten++
		} else {
			stats.Unchanged++
		}
		return nil
	})
	if walkErr != nil {
		if errors.IsClassified(walkErr) {
			return stats, walkErr
		}
		return stats, errors.DocsError("colorize failed").WithCause(walkErr).Build()
	}
	return stats, nil
}

type colorizer struct {
	opts      Options
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newColorizer(opts Options) (*colorizer, error) {
	lexer := lexers.Get("java")
	if lexer == nil {
		return nil, errors.InternalError("java lexer unavailable").Build()
	}
	name := opts.Style
	if name == "" {
		name = srchtml.DefaultStyle
	}
	return &colorizer{
		opts:      opts,
		lexer:     chroma.Coalesce(lexer),
		style:     styles.Get(name),
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}, nil
}

func (c *colorizer) writeStylesheet(root string) error {
	var buf bytes.Buffer
	if err := c.formatter.WriteCSS(&buf, c.style); err != nil {
		return errors.DocsError("cannot render highlight stylesheet").WithCause(err).Build()
	}
	if err := os.WriteFile(filepath.Join(root, Stylesheet), buf.Bytes(), 0o644); err != nil {
		return errors.FileSystemError("cannot write highlight stylesheet").WithCause(err).Build()
	}
	return nil
}

// file decorates one page; it reports whether the page was rewritten.
func (c *colorizer) file(abs, rel string) (bool, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return false, err
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	body := find(doc, atom.Body)
	if body == nil || hasAttr(body, MarkerAttr) {
		return false, nil
	}

	for _, pre := range findAll(doc, atom.Pre) {
		if err := c.highlight(pre); err != nil {
			return false, err
		}
	}
	if head := find(doc, atom.Head); head != nil {
		head.AppendChild(element(atom.Link, map[string]string{
			"rel":  "stylesheet",
			"type": "text/css",
			"href": relativeTo(rel, Stylesheet),
		}))
	}
	if c.opts.SourceLinks {
		if target, ok := SourceTarget(c.opts.Module, rel); ok {
			insertSourceLink(doc, relativeTo(rel, target))
		}
	}
	body.Attr = append(body.Attr, html.Attribute{Key: MarkerAttr, Val: "true"})

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return false, err
	}
	return true, writeAtomic(abs, buf.Bytes())
}

// highlight replaces the text of a <pre> (or its single <code> child) with
// token spans. Blocks containing markup such as links are left untouched.
func (c *colorizer) highlight(pre *html.Node) error {
	target := pre
	if only := onlyElementChild(pre); only != nil && only.DataAtom == atom.Code {
		target = only
	}
	text, plain := textOnly(target)
	if !plain || strings.TrimSpace(text) == "" {
		return nil
	}
	it, err := c.lexer.Tokenise(nil, text)
	if err != nil {
		return err
	}
	for child := target.FirstChild; child != nil; {
		next := child.NextSibling
		target.RemoveChild(child)
		child = next
	}
	for _, tok := range it.Tokens() {
		cls := tokenClass(tok.Type)
		textNode := &html.Node{Type: html.TextNode, Data: tok.Value}
		if cls == "" {
			target.AppendChild(textNode)
			continue
		}
		span := element(atom.Span, map[string]string{"class": cls})
		span.AppendChild(textNode)
		target.AppendChild(span)
	}
	addClass(pre, "chroma")
	return nil
}

// SourceTarget maps a type page path to its rendered source page. Only pages
// named after a type (no dash, leading upper case letter) qualify; nested types
// ("Outer.Inner.html") map to the outer type's source file. A leading module
// directory equal to module is stripped.
func SourceTarget(module, rel string) (string, bool) {
	if strings.HasPrefix(rel, srchtml.Dir+"/") {
		return "", false
	}
	dir, file := path.Split(rel)
	name := strings.TrimSuffix(file, ".html")
	if name == "" || strings.Contains(name, "-") {
		return "", false
	}
	if first := []rune(name)[0]; !unicode.IsUpper(first) {
		return "", false
	}
	outer, _, _ := strings.Cut(name, ".")
	dir = strings.TrimSuffix(dir, "/")
	if module != "" && (dir == module || strings.HasPrefix(dir, module+"/")) {
		dir = strings.TrimPrefix(strings.TrimPrefix(dir, module), "/")
	}
	return srchtml.PagePath(module, path.Join(dir, outer+".java")), true
}

func insertSourceLink(doc *html.Node, href string) {
	h1 := find(doc, atom.H1)
	if h1 == nil || h1.Parent == nil {
		return
	}
	div := element(atom.Div, map[string]string{"class": SourceLinkClass})
	a := element(atom.A, map[string]string{"href": href})
	a.AppendChild(&html.Node{Type: html.TextNode, Data: "Source"})
	div.AppendChild(a)
	h1.Parent.InsertBefore(div, h1.NextSibling)
}

// relativeTo returns the link from page rel to root relative target.
func relativeTo(rel, target string) string {
	depth := strings.Count(rel, "/")
	return strings.Repeat("../", depth) + target
}

func tokenClass(t chroma.TokenType) string {
	for ; t != 0; t = t.Parent() {
		if cls, ok := chroma.StandardTypes[t]; ok {
			if cls == "w" {
				return ""
			}
			return cls
		}
	}
	return ""
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".colorize-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
