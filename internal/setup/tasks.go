package setup

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/jbuild/internal/archive"
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/jdk"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

func (m *Module) wireCompile(w *wiring, paths buildPaths) {
	layout := w.p.Layout()
	release := m.opts.Config.Build.JavaRelease
	tc := m.opts.Toolchain

	if t := w.register(TaskCompile, compileAction(tc)); t != nil {
		t.Describe("Compiles main sources").SetSpec(&jdk.CompileSpec{
			Sources:   layout.Sources,
			Classpath: layout.Classpath,
			Output:    paths.classes,
			Release:   release,
			Options:   slices.Clone(jdk.LintOptions),
		})
	}
	if t := w.register(TaskCompileTest, compileAction(tc), TaskCompile); t != nil {
		cp := append([]string{paths.classes}, layout.Classpath...)
		cp = append(cp, layout.TestClasspath...)
		t.Describe("Compiles test sources").SetSpec(&jdk.CompileSpec{
			Sources:   layout.Tests,
			Classpath: cp,
			Output:    paths.testClasses,
			Release:   release,
			Options:   slices.Clone(jdk.LintOptions),
		})
	}
}

func compileAction(tc Toolchain) task.Action {
	return func(ctx context.Context, t *task.Task) error {
		spec, ok := task.SpecOf[*jdk.CompileSpec](t)
		if !ok {
			return errors.InternalError("compile task has no spec").WithTask(t.Name()).Build()
		}
		return tc.Compile(ctx, *spec)
	}
}

func (m *Module) wireTests(w *wiring, paths buildPaths) {
	p := w.p
	layout := p.Layout()
	tc := m.opts.Toolchain
	coverage := p.Capabilities().Coverage

	spec := &jdk.TestSpec{
		Project:       p.Name(),
		ProjectDir:    p.Dir(),
		Classes:       paths.classes,
		TestClasses:   paths.testClasses,
		Classpath:     layout.Classpath,
		TestClasspath: layout.TestClasspath,
		Reports:       paths.reports,
	}
	if coverage {
		spec.ExecFile = paths.execFile
	}
	test := w.register(TaskTest, func(ctx context.Context, t *task.Task) error {
		s, ok := task.SpecOf[*jdk.TestSpec](t)
		if !ok {
			return errors.InternalError("test task has no spec").Build()
		}
		return tc.Test(ctx, *s)
	}, TaskCompileTest)
	if test == nil {
		return
	}
	test.Describe("Runs the tests").SetSpec(spec)

	if !coverage {
		return
	}
	report := w.register(TaskCoverageReport, func(ctx context.Context, t *task.Task) error {
		s, ok := task.SpecOf[*jdk.CoverageSpec](t)
		if !ok {
			return errors.InternalError("coverage task has no spec").Build()
		}
		return tc.Coverage(ctx, *s)
	})
	if report == nil {
		return
	}
	report.Describe("Writes coverage reports").SetSpec(&jdk.CoverageSpec{
		Project:  p.Name(),
		ExecFile: paths.execFile,
		Classes:  paths.classes,
		Sources:  layout.Sources,
		HTML:     filepath.Join(paths.coverage, "html"),
		XML:      filepath.Join(paths.coverage, "coverage.xml"),
		CSV:      filepath.Join(paths.coverage, "coverage.csv"),
	})
	test.FinalizedBy(TaskCoverageReport)
}

func (m *Module) wireDocs(w *wiring, doc *docs.Task, tokens archive.Tokens) (docs.WireOptions, error) {
	cfg := m.opts.Config
	p := w.p
	layout := p.Layout()
	env := m.opts.Env

	visibility := cfg.Docs.Visibility
	if v := p.DocsVisibility(); v != "" {
		visibility = v
	}
	tags := make([]docs.Tag, 0, len(cfg.Docs.Tags))
	for _, tc := range cfg.Docs.Tags {
		tags = append(tags, docs.Tag{Name: tc.Name, Locations: tc.Locations, Label: tc.Label})
	}
	links := make([]docs.Link, 0, len(cfg.Docs.Links))
	for _, l := range cfg.Docs.Links {
		links = append(links, docs.Link{URL: l.URL, PackageList: resolve(cfg.RootDir, l.PackageList)})
	}

	err := docs.Configure(doc, docs.Options{
		LibraryName:   cfg.Library.Name,
		Version:       cfg.Library.Version,
		Author:        cfg.Library.Author,
		CopyrightYear: env.CopyrightYear(),
		BuildDate:     env.BuildDate(),
		Visibility:    docs.Visibility(visibility),
		Encoding:      cfg.Docs.Encoding,
		Exclude:       append(slices.Clone(cfg.Docs.Exclude), p.DocsExclude()...),
		Tags:          tags,
		Links:         links,
		Stylesheet:    resolve(cfg.RootDir, cfg.Docs.Stylesheet),
		Overview:      layout.Overview,
		SourceRoots:   layout.Sources,
		Classpath:     layout.Classpath,
		ModuleName:    p.Metadata().ModuleName,
		Release:       cfg.Build.JavaRelease,
	})
	if err != nil {
		return docs.WireOptions{}, err
	}

	wo := docs.WireOptions{
		Colorize:    config.Enabled(cfg.Docs.Colorize) && !p.Disabled(docs.TaskColorize),
		SourceHTML:  config.Enabled(cfg.Docs.SourceHTML) && !p.Disabled(docs.TaskRenderSource),
		ProjectName: p.Name(),
		Substitute:  tokens.Apply,
	}
	docs.Wire(p.Tasks(), doc, m.opts.Toolchain, wo)
	if t, ok := p.Tasks().Get(docs.TaskJavadoc); ok && p.Tasks().Has(TaskCompile) {
		t.DependsOn(TaskCompile)
	}
	return wo, nil
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) || root == "" || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(root, p)
}
