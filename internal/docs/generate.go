package docs

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
)

// Generator runs the documentation tool.
type Generator interface {
	Javadoc(ctx context.Context, args []string) error
}

// docFilesDir is copied verbatim from sources into the generated tree.
const docFilesDir = "doc-files"

// Generate runs the generator for a configured task. On success doc-files
// directories are copied and the task moves to Generated; on failure it moves
// to Failed and no post-processing will run.
func Generate(ctx context.Context, t *Task, gen Generator) error {
	if st := t.State(); st != Configured {
		return errors.InternalError("documentation generated before configuration").
			WithContext("state", string(st)).Build()
	}
	if err := generate(ctx, t, gen); err != nil {
		_ = t.Transition(Failed)
		return err
	}
	return t.Transition(Generated)
}

func generate(ctx context.Context, t *Task, gen Generator) error {
	if err := os.RemoveAll(t.OutputDir); err != nil {
		return errors.FileSystemError("cannot clean documentation output").WithCause(err).Build()
	}
	if err := os.MkdirAll(t.OutputDir, 0o755); err != nil {
		return errors.FileSystemError("cannot create documentation output").WithCause(err).Build()
	}
	if strings.HasSuffix(t.Overview, ".md") {
		rendered := filepath.Join(filepath.Dir(t.OutputDir), "tmp", "overview.html")
		if err := RenderOverview(t.Overview, rendered); err != nil {
			return err
		}
		t.mu.Lock()
		t.Overview = rendered
		t.mu.Unlock()
	}
	args, err := Arguments(t)
	if err != nil {
		return err
	}
	if err := gen.Javadoc(ctx, args); err != nil {
		return errors.DocsError("documentation generation failed").WithCause(err).Build()
	}
	copied, err := CopyDocFiles(t.SourceRoots, t.OutputDir)
	if err != nil {
		return err
	}
	slog.Debug("Documentation generated", logfields.Path(t.OutputDir), slog.Int("doc_files", copied))
	return nil
}

// RenderOverview converts a Markdown overview to the HTML page javadoc expects.
func RenderOverview(src, dst string) error {
	md, err := os.ReadFile(src)
	if err != nil {
		return errors.DocsError("cannot read overview").WithContext("path", src).WithCause(err).Build()
	}
	var body bytes.Buffer
	if err := goldmark.Convert(md, &body); err != nil {
		return errors.DocsError("cannot render overview").WithContext("path", src).WithCause(err).Build()
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><title>Overview</title></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.FileSystemError("cannot create overview directory").WithCause(err).Build()
	}
	if err := os.WriteFile(dst, page.Bytes(), 0o644); err != nil {
		return errors.FileSystemError("cannot write overview").WithCause(err).Build()
	}
	return nil
}

// CopyDocFiles copies every doc-files directory below the source roots into the
// same package location under out. It returns the number of copied files.
func CopyDocFiles(roots []string, out string) (int, error) {
	count := 0
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if !inDocFiles(rel) {
				return nil
			}
			if err := copyFile(p, filepath.Join(out, rel)); err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			return count, errors.FileSystemError("cannot copy doc-files").WithContext("root", root).WithCause(err).Build()
		}
	}
	return count, nil
}

func inDocFiles(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if seg == docFilesDir {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
