// Package archive writes jar archives: a manifest first, then the contents of
// the configured directories in sorted order with fixed timestamps.
package archive

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/manifest"
)

// Content is one directory tree packaged into the archive.
type Content struct {
	// Root is the directory on disk; a missing root contributes nothing.
	Root string
	// Prefix is prepended to entry names.
	Prefix string
	// Substitute applies the spec's tokens to text files.
	Substitute bool
	// Include limits files by extension, e.g. ".java"; empty means all files.
	Include []string
}

// Spec describes one archive.
type Spec struct {
	Path     string
	Manifest *manifest.Attributes
	Contents []Content
	Tokens   Tokens
	// Modified is stamped on every entry.
	Modified time.Time
}

// Stats summarizes a written archive.
type Stats struct {
	Entries     int
	Substituted int
}

type entry struct {
	name       string
	source     string
	substitute bool
}

// Write builds the archive atomically at spec.Path.
func Write(ctx context.Context, spec Spec) (Stats, error) {
	var stats Stats
	if spec.Manifest == nil {
		return stats, errors.ArchiveError("archive has no manifest").WithContext("path", spec.Path).Build()
	}
	entries, err := collect(spec.Contents)
	if err != nil {
		return stats, err
	}
	if err := os.MkdirAll(filepath.Dir(spec.Path), 0o755); err != nil {
		return stats, errors.FileSystemError("cannot create archive directory").WithCause(err).Build()
	}
	tmp, err := os.CreateTemp(filepath.Dir(spec.Path), ".jar-*")
	if err != nil {
		return stats, errors.FileSystemError("cannot create archive").WithCause(err).Build()
	}
	defer os.Remove(tmp.Name())

	modified := spec.Modified
	if modified.IsZero() {
		modified = time.Date(1980, 2, 1, 0, 0, 0, 0, time.UTC)
	}
	zw := zip.NewWriter(tmp)
	add := func(name string, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	fail := func(err error) (Stats, error) {
		zw.Close()
		tmp.Close()
		if errors.IsClassified(err) {
			return stats, err
		}
		return stats, errors.ArchiveError("cannot write archive").WithContext("path", spec.Path).WithCause(err).Build()
	}

	if _, err := zw.CreateHeader(&zip.FileHeader{Name: "META-INF/", Method: zip.Store, Modified: modified}); err != nil {
		return fail(err)
	}
	if err := add(manifest.Path, spec.Manifest.Encode()); err != nil {
		return fail(err)
	}
	stats.Entries = 1
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		data, err := os.ReadFile(e.source)
		if err != nil {
			return fail(err)
		}
		if e.substitute {
			replaced := spec.Tokens.Apply(data)
			if !bytes.Equal(replaced, data) {
				stats.Substituted++
			}
			data = replaced
		}
		if err := add(e.name, data); err != nil {
			return fail(err)
		}
		stats.Entries++
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return stats, errors.ArchiveError("cannot finish archive").WithCause(err).Build()
	}
	if err := tmp.Close(); err != nil {
		return stats, errors.FileSystemError("cannot close archive").WithCause(err).Build()
	}
	if err := os.Rename(tmp.Name(), spec.Path); err != nil {
		return stats, errors.FileSystemError("cannot move archive into place").WithCause(err).Build()
	}
	return stats, nil
}

func collect(contents []Content) ([]entry, error) {
	byName := make(map[string]entry)
	for _, c := range contents {
		if _, err := os.Stat(c.Root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(c.Root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if len(c.Include) > 0 && !slices.Contains(c.Include, filepath.Ext(p)) {
				return nil
			}
			rel, err := filepath.Rel(c.Root, p)
			if err != nil {
				return err
			}
			name := path.Join(c.Prefix, filepath.ToSlash(rel))
			if strings.EqualFold(name, manifest.Path) {
				return nil
			}
			byName[name] = entry{name: name, source: p, substitute: c.Substitute}
			return nil
		})
		if err != nil {
			return nil, errors.FileSystemError("cannot scan archive contents").WithContext("root", c.Root).WithCause(err).Build()
		}
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	slices.Sort(names)
	out := make([]entry, len(names))
	for i, n := range names {
		out[i] = byName[n]
	}
	return out, nil
}
