package docs

import (
	"fmt"
	"html"
	"slices"
)

// DefaultTags are registered when no tags are configured.
var DefaultTags = []Tag{
	{Name: "apiNote", Locations: "a", Label: "API Note:"},
	{Name: "implSpec", Locations: "a", Label: "Implementation Requirements:"},
	{Name: "implNote", Locations: "a", Label: "Implementation Note:"},
}

// Options are the build-wide and project facts Configure applies.
type Options struct {
	LibraryName   string
	Version       string
	Author        string
	CopyrightYear string
	BuildDate     string

	Visibility Visibility
	Encoding   string
	Exclude    []string
	Tags       []Tag
	Links      []Link
	Stylesheet string
	Overview   string

	SourceRoots []string
	Classpath   []string
	ModuleName  string
	Release     int
}

// Configure applies options to t and moves it to Configured. Re-running it
// with the same options leaves the task unchanged.
func Configure(t *Task, o Options) error {
	if err := t.Transition(Configured); err != nil {
		return err
	}
	t.mu.Lock()
	t.Visibility = o.Visibility
	if t.Visibility == "" {
		t.Visibility = Protected
	}
	t.Encoding = o.Encoding
	if t.Encoding == "" {
		t.Encoding = "UTF-8"
	}
	t.Exclude = slices.Clone(o.Exclude)
	t.SourceRoots = slices.Clone(o.SourceRoots)
	t.Classpath = slices.Clone(o.Classpath)
	t.ModuleName = o.ModuleName
	t.Release = o.Release
	t.Stylesheet = o.Stylesheet
	t.Overview = o.Overview
	t.LinkSource = true
	t.WindowTitle = fmt.Sprintf("%s %s", o.LibraryName, o.Version)
	t.DocTitle = fmt.Sprintf("<h1>%s %s</h1>", html.EscapeString(o.LibraryName), html.EscapeString(o.Version))
	t.Bottom = bottom(o)
	t.mu.Unlock()

	tags := o.Tags
	if len(tags) == 0 {
		tags = DefaultTags
	}
	for _, tag := range tags {
		t.AddTag(tag)
	}
	for _, l := range o.Links {
		t.AddLink(l)
	}
	return nil
}

func bottom(o Options) string {
	owner := o.Author
	if owner == "" {
		owner = o.LibraryName
	}
	return fmt.Sprintf("&copy; %s %s &nbsp;<i>(%s)</i>",
		html.EscapeString(o.CopyrightYear), html.EscapeString(owner), html.EscapeString(o.BuildDate))
}
