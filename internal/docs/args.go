package docs

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Arguments builds the javadoc command line for t. Packages are discovered
// from the source roots; a package whose slash separated path matches an
// exclude pattern is left out.
func Arguments(t *Task) ([]string, error) {
	t.mu.Lock()
	out := t.OutputDir
	enc := t.Encoding
	vis := t.Visibility
	roots := slices.Clone(t.SourceRoots)
	exclude := slices.Clone(t.Exclude)
	classpath := slices.Clone(t.Classpath)
	release := t.Release
	window, title, bottomText := t.WindowTitle, t.DocTitle, t.Bottom
	overview, stylesheet, linkSource := t.Overview, t.Stylesheet, t.LinkSource
	t.mu.Unlock()

	packages, err := Packages(roots, exclude)
	if err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, errors.DocsError("no documentable packages found").
			WithContext("roots", strings.Join(roots, string(os.PathListSeparator))).Build()
	}

	args := []string{
		"-d", out,
		"-encoding", enc,
		"-docencoding", enc,
		"-charset", enc,
		"-" + string(vis),
		"-windowtitle", window,
		"-doctitle", title,
		"-bottom", bottomText,
		"-quiet",
	}
	if linkSource {
		args = append(args, "-linksource")
	}
	if release > 0 {
		args = append(args, "--release", strconv.Itoa(release))
	}
	for _, tag := range t.Tags() {
		args = append(args, "-tag", tag.String())
	}
	for _, l := range t.Links() {
		args = append(args, "-linkoffline", l.URL, l.PackageList)
	}
	if overview != "" {
		args = append(args, "-overview", overview)
	}
	if stylesheet != "" {
		args = append(args, "--add-stylesheet", stylesheet)
	}
	args = append(args, "-sourcepath", strings.Join(roots, string(os.PathListSeparator)))
	if len(classpath) > 0 {
		args = append(args, "-classpath", strings.Join(classpath, string(os.PathListSeparator)))
	}
	return append(args, packages...), nil
}

// Packages lists the dotted names of every directory below roots that holds
// at least one .java file, sorted and deduplicated.
func Packages(roots, exclude []string) ([]string, error) {
	matchers := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.ConfigError("invalid docs exclude pattern").
				WithContext("pattern", pattern).WithCause(err).Build()
		}
		matchers = append(matchers, g)
	}

	seen := make(map[string]struct{})
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".java") || d.Name() == "module-info.java" {
				return nil
			}
			rel, err := filepath.Rel(root, filepath.Dir(p))
			if err != nil || rel == "." {
				return err
			}
			rel = filepath.ToSlash(rel)
			if excluded(matchers, rel) {
				return nil
			}
			seen[strings.ReplaceAll(rel, "/", ".")] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, errors.FileSystemError("cannot scan sources").WithContext("root", root).WithCause(err).Build()
		}
	}
	out := make([]string, 0, len(seen))
	for pkg := range seen {
		out = append(out, pkg)
	}
	slices.Sort(out)
	return out, nil
}

// excluded matches the package path framed by slashes so "**/internal/**"
// also covers a top level "internal" package.
func excluded(matchers []glob.Glob, rel string) bool {
	framed := "/" + rel + "/"
	for _, m := range matchers {
		if m.Match(rel) || m.Match(framed) {
			return true
		}
	}
	return false
}
