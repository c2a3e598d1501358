// Package project models the buildable units of a multi-module build and the
// insertion-ordered registry holding them.
package project

import (
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Capabilities are the behaviors a project opted into during declaration.
type Capabilities struct {
	Library   bool
	Publishes bool
	Docs      bool
	Coverage  bool
}

// Metadata is descriptive project data.
type Metadata struct {
	ModuleName  string
	Description string
	Version     string
	Group       string
}

// Layout locates sources and class paths. Paths are absolute.
type Layout struct {
	Sources       []string
	Resources     []string
	Tests         []string
	Classpath     []string
	TestClasspath []string
	Overview      string
	BuildDir      string
}

// Declaration is the mutable view a project is declared through. It is frozen
// into a Project when the declaration completes.
type Declaration struct {
	Name     string
	Dir      string
	Caps     Capabilities
	Meta     Metadata
	Layout   Layout
	Disabled []string
	// DocsVisibility overrides the build-wide documentation visibility.
	DocsVisibility string
	DocsExclude    []string
}

// Project is a frozen declaration plus its task container and optional
// documentation task.
type Project struct {
	name           string
	dir            string
	caps           Capabilities
	meta           Metadata
	layout         Layout
	disabled       []string
	docsVisibility string
	docsExclude    []string
	docTask        *docs.Task
	tasks          *task.Container
}

// New freezes a declaration. A documentation task is created exactly when the
// declaration enables docs.
func New(d Declaration) *Project {
	p := &Project{
		name:           d.Name,
		dir:            d.Dir,
		caps:           d.Caps,
		meta:           d.Meta,
		layout:         cloneLayout(d.Layout),
		disabled:       slices.Clone(d.Disabled),
		docsVisibility: d.DocsVisibility,
		docsExclude:    slices.Clone(d.DocsExclude),
		tasks:          task.NewContainer(d.Name),
	}
	if d.Caps.Docs {
		p.docTask = docs.NewTask(p.DocsDir())
	}
	return p
}

func (p *Project) Name() string               { return p.name }
func (p *Project) Dir() string                { return p.dir }
func (p *Project) Capabilities() Capabilities { return p.caps }
func (p *Project) Metadata() Metadata         { return p.meta }
func (p *Project) Layout() Layout             { return cloneLayout(p.layout) }
func (p *Project) Tasks() *task.Container     { return p.tasks }

// DocTask returns the documentation task, or nil when the project declares no documentation.
func (p *Project) DocTask() *docs.Task { return p.docTask }

// DocsVisibility returns the project override, empty when unset.
func (p *Project) DocsVisibility() string { return p.docsVisibility }

// DocsExclude returns extra exclude patterns for this project.
func (p *Project) DocsExclude() []string { return slices.Clone(p.docsExclude) }

// Disabled reports whether the named task must not be registered.
func (p *Project) Disabled(taskName string) bool { return slices.Contains(p.disabled, taskName) }

// BuildDir is the project's output root.
func (p *Project) BuildDir() string { return p.layout.BuildDir }

// DocsDir is where generated documentation goes.
func (p *Project) DocsDir() string { return filepath.Join(p.layout.BuildDir, "docs", "javadoc") }

// ArtifactID is the published artifact name.
func (p *Project) ArtifactID() string { return p.name }

func cloneLayout(l Layout) Layout {
	return Layout{
		Sources:       slices.Clone(l.Sources),
		Resources:     slices.Clone(l.Resources),
		Tests:         slices.Clone(l.Tests),
		Classpath:     slices.Clone(l.Classpath),
		TestClasspath: slices.Clone(l.TestClasspath),
		Overview:      l.Overview,
		BuildDir:      l.BuildDir,
	}
}
