// Package setup applies the cross-cutting configuration every library
// project receives once all projects are declared: manifest attributes,
// compiler diagnostics, test and coverage wiring, the documentation chain and
// the publication chain.
package setup

import (
	"context"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/jbuild/internal/archive"
	"git.home.luguber.info/inful/jbuild/internal/buildenv"
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/jdk"
	"git.home.luguber.info/inful/jbuild/internal/manifest"
	"git.home.luguber.info/inful/jbuild/internal/project"
	"git.home.luguber.info/inful/jbuild/internal/publish"
	"git.home.luguber.info/inful/jbuild/internal/task"
	"git.home.luguber.info/inful/jbuild/internal/version"
)

// Task names registered by setup.
const (
	TaskCompile        = "compile"
	TaskCompileTest    = "compileTest"
	TaskTest           = "test"
	TaskCoverageReport = "coverageReport"
	TaskJar            = "jar"
	TaskBuild          = "build"
	// TaskDocs aggregates the documentation chain.
	TaskDocs = "docs"
)

// Toolchain is the subset of the JDK toolchain setup wires into tasks.
type Toolchain interface {
	docs.Generator
	Compile(ctx context.Context, spec jdk.CompileSpec) error
	Test(ctx context.Context, spec jdk.TestSpec) error
	Coverage(ctx context.Context, spec jdk.CoverageSpec) error
}

// Options are the run-wide inputs.
type Options struct {
	Config    *config.Config
	Env       buildenv.Env
	Toolchain Toolchain
	// Revision is the source revision for the POM scm tag; empty outside a repository.
	Revision string
	DryRun   bool
	Lookup   publish.LookupFunc
	Uploader publish.Uploader
	Signer   *publish.Signer
}

// Module applies setup to projects.
type Module struct {
	opts Options
}

// New creates the setup module.
func New(o Options) *Module { return &Module{opts: o} }

// Apply configures every library project in registration order. It has the
// shape of a lifecycle callback.
func (m *Module) Apply(ctx context.Context, projects *project.Registry) error {
	for p := range projects.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.Capabilities().Library {
			continue
		}
		if err := m.Configure(p); err != nil {
			return err
		}
	}
	return nil
}

// Configure applies setup to one project. It is idempotent.
func (m *Module) Configure(p *project.Project) error {
	cfg := m.opts.Config
	if cfg == nil || m.opts.Toolchain == nil {
		return errors.InternalError("setup requires config and toolchain").Build()
	}
	attrs, err := m.Manifest(p)
	if err != nil {
		return err
	}

	paths := pathsFor(p)
	coords := publish.ProjectCoordinates(p, cfg.Library)
	tokens := archive.StandardTokens(cfg.Library.ID, coords.Version, m.opts.Env.CopyrightYear())
	w := wiring{p: p}

	m.wireCompile(&w, paths)
	m.wireTests(&w, paths)

	if t := w.register(TaskJar, archive.Action, TaskCompile); t != nil {
		layout := p.Layout()
		contents := []archive.Content{{Root: paths.classes}}
		for _, r := range layout.Resources {
			contents = append(contents, archive.Content{Root: r, Substitute: true})
		}
		t.Describe("Assembles the main jar").SetSpec(&archive.Spec{
			Path:     filepath.Join(p.BuildDir(), "libs", coords.FileName("", "jar")),
			Contents: contents,
			Tokens:   tokens,
		})
	}
	if t := w.register(TaskBuild, nil, TaskJar, TaskTest); t != nil {
		t.Describe("Assembles and tests the project")
	}

	docsTask := ""
	if doc := p.DocTask(); doc != nil {
		wo, err := m.wireDocs(&w, doc, tokens)
		if err != nil {
			return err
		}
		docsTask = docs.LastTask(wo)
		if t := w.register(TaskDocs, nil, docsTask); t != nil {
			t.Describe("Generates and post-processes API documentation")
		}
	}

	if p.Capabilities().Publishes {
		err := publish.Configure(p, publish.Options{
			Config:   cfg,
			Tokens:   tokens,
			JarTask:  TaskJar,
			DocsTask: docsTask,
			Revision: m.opts.Revision,
			DryRun:   m.opts.DryRun,
			Lookup:   m.opts.Lookup,
			Uploader: m.opts.Uploader,
			Signer:   m.opts.Signer,
		})
		if err != nil {
			return err
		}
	}

	attachManifest(p.Tasks(), attrs)
	return nil
}

// Manifest builds the attribute set stamped into every archive of p.
func (m *Module) Manifest(p *project.Project) (*manifest.Attributes, error) {
	lib := m.opts.Config.Library
	env := m.opts.Env
	meta := p.Metadata()
	projectVersion := meta.Version
	if projectVersion == "" {
		projectVersion = lib.Version
	}
	maintainer := lib.Author
	if lib.Email != "" {
		maintainer += " <" + lib.Email + ">"
	}
	attrs, err := manifest.Standard(manifest.Facts{
		Title:          lib.Name,
		Version:        lib.Version,
		URL:            lib.URL,
		Vendor:         lib.Vendor,
		Maintainer:     maintainer,
		Project:        p.Name(),
		ProjectVersion: projectVersion,
		CreatedWith:    version.CreatedWith(),
		BuiltBy:        env.User(),
		BuildDate:      env.BuildDate(),
		JDK:            env.JDK(),
		OSName:         env.OSName(),
		OSArch:         env.OSArch(),
		OSVersion:      env.OSVersion(),
		ModuleName:     meta.ModuleName,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryProject, "cannot build manifest").
			WithProject(p.Name()).Build()
	}
	return attrs, nil
}

// attachManifest sets attrs on every archive task of c.
func attachManifest(c *task.Container, attrs *manifest.Attributes) {
	for t := range c.All() {
		spec, ok := task.SpecOf[*archive.Spec](t)
		if !ok || spec == nil {
			continue
		}
		next := *spec
		next.Manifest = attrs
		next.Contents = slices.Clone(spec.Contents)
		t.SetSpec(&next)
	}
}

type buildPaths struct {
	classes     string
	testClasses string
	reports     string
	execFile    string
	coverage    string
}

func pathsFor(p *project.Project) buildPaths {
	b := p.BuildDir()
	return buildPaths{
		classes:     filepath.Join(b, "classes", "java", "main"),
		testClasses: filepath.Join(b, "classes", "java", "test"),
		reports:     filepath.Join(b, "reports", "tests"),
		execFile:    filepath.Join(b, "coverage", "test.exec"),
		coverage:    filepath.Join(b, "reports", "coverage"),
	}
}

// wiring registers tasks while honoring the project's disabled list. Edges to
// tasks that do not exist are dropped.
type wiring struct {
	p *project.Project
}

func (w *wiring) register(name string, action task.Action, deps ...string) *task.Task {
	if w.p.Disabled(name) {
		return nil
	}
	c := w.p.Tasks()
	t, _ := c.Register(name, action)
	for _, d := range deps {
		if c.Has(d) {
			t.DependsOn(d)
		}
	}
	return t
}
