package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of build-affecting configuration fields. Watch
// mode uses it to skip rebuilds when a reloaded file did not change anything.
// Include order is significant and is hashed as-is.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("library.id", c.Library.ID)
	w("library.group", c.Library.Group)
	w("library.version", c.Library.Version)
	w("library.vendor", c.Library.Vendor)
	w("library.copyright_since", strconv.Itoa(c.Library.CopyrightSince))
	w("include", strings.Join(c.Include, ","))
	w("build.output_dir", c.Build.OutputDir)
	w("build.java_release", strconv.Itoa(c.Build.JavaRelease))
	w("docs.visibility", c.Docs.Visibility)
	w("docs.encoding", c.Docs.Encoding)
	w("docs.exclude", strings.Join(c.Docs.Exclude, ","))
	for _, t := range c.Docs.Tags {
		w("docs.tag", t.Name, t.Locations, t.Label)
	}
	for _, l := range c.Docs.Links {
		w("docs.link", l.URL, l.PackageList)
	}
	w("docs.colorize", strconv.FormatBool(Enabled(c.Docs.Colorize)))
	w("docs.source_html", strconv.FormatBool(Enabled(c.Docs.SourceHTML)))
	w("publish.snapshot_url", c.Publish.SnapshotURL)
	w("publish.release_url", c.Publish.ReleaseURL)
	return hex.EncodeToString(h.Sum(nil))
}
