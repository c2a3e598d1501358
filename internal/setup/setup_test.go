package setup

import (
	"context"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/archive"
	"git.home.luguber.info/inful/jbuild/internal/buildenv"
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/docs"
	"git.home.luguber.info/inful/jbuild/internal/jdk"
	"git.home.luguber.info/inful/jbuild/internal/lifecycle"
	"git.home.luguber.info/inful/jbuild/internal/manifest"
	"git.home.luguber.info/inful/jbuild/internal/project"
	"git.home.luguber.info/inful/jbuild/internal/publish"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// fakeToolchain writes plausible outputs instead of invoking the JDK.
type fakeToolchain struct {
	javadocErr error
	compiled   []jdk.CompileSpec
	tested     []jdk.TestSpec
	covered    int
}

func (f *fakeToolchain) Compile(_ context.Context, spec jdk.CompileSpec) error {
	f.compiled = append(f.compiled, spec)
	if err := os.MkdirAll(spec.Output, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(spec.Output, "Grid.class"), []byte{0xca, 0xfe, 0xba, 0xbe}, 0o644)
}

func (f *fakeToolchain) Test(_ context.Context, spec jdk.TestSpec) error {
	f.tested = append(f.tested, spec)
	if spec.ExecFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(spec.ExecFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(spec.ExecFile, []byte("exec"), 0o644)
}

func (f *fakeToolchain) Coverage(context.Context, jdk.CoverageSpec) error {
	f.covered++
	return nil
}

func (f *fakeToolchain) Javadoc(_ context.Context, args []string) error {
	if f.javadocErr != nil {
		return f.javadocErr
	}
	out := args[slices.Index(args, "-d")+1]
	p := filepath.Join(out, "io", "jenetics", "Grid.html")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	page := "<html><head></head><body><h1>Class Grid</h1><pre>int x = 1;</pre></body></html>"
	return os.WriteFile(p, []byte(page), 0o644)
}

type memoryUploader struct {
	paths []string
}

func (m *memoryUploader) Upload(_ context.Context, rel, _ string) error {
	m.paths = append(m.paths, rel)
	return nil
}

func testEnv() buildenv.Env {
	return buildenv.Capture(buildenv.Options{
		Now:            time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC),
		CopyrightSince: 2022,
		JDK:            "17.0.2",
		User:           "franz",
	})
}

func testConfig(root string) *config.Config {
	return &config.Config{
		RootDir: root,
		Library: config.LibraryConfig{
			ID: "lattices", Name: "Lattices", Group: "io.jenetics", Version: "0.1.0-SNAPSHOT",
			URL: "https://github.com/jenetics/lattices", Author: "Franz Wilhelmstötter",
			Email: "franz@example.com", Vendor: "Jenetics", CopyrightSince: 2022,
		},
		Build:   config.BuildConfig{OutputDir: "build", Parallelism: 2, JavaRelease: 17},
		Docs:    config.DocsConfig{Exclude: []string{"**/internal/**"}},
		Publish: config.PublishConfig{SnapshotURL: "https://repo/snapshots", ReleaseURL: "https://repo/releases"},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const gridSource = "/*\n * Java Lattice Library (@__identifier__@).\n * Copyright (c) @__year__@ Franz Wilhelmst\u00f6tter\n */\npackage io.jenetics;\npublic class Grid {}\n"

func layoutFor(t *testing.T, dir string) project.Layout {
	t.Helper()
	src := filepath.Join(dir, "src", "main", "java")
	res := filepath.Join(dir, "src", "main", "resources")
	writeFile(t, filepath.Join(src, "io", "jenetics", "Grid.java"), gridSource)
	writeFile(t, filepath.Join(res, "io", "jenetics", "about.txt"), "@__identifier__@ (c) @__year__@")
	return project.Layout{
		Sources:   []string{src},
		Resources: []string{res},
		Tests:     []string{filepath.Join(dir, "src", "test", "java")},
		BuildDir:  filepath.Join(dir, "build"),
	}
}

type fixture struct {
	build *lifecycle.Build
	tc    *fakeToolchain
	up    *memoryUploader
	a, b  *project.Project
}

// newFixture declares project a (library, docs, publish, coverage) and
// project b (library only). The setup hook is registered before either
// declaration sets its flags.
func newFixture(t *testing.T, tc *fakeToolchain) *fixture {
	t.Helper()
	root := t.TempDir()
	entity, err := openpgp.NewEntity("Signer", "", "signer@example.com", nil)
	require.NoError(t, err)
	f := &fixture{build: lifecycle.New(), tc: tc, up: &memoryUploader{}}
	mod := New(Options{
		Config:    testConfig(root),
		Env:       testEnv(),
		Toolchain: tc,
		Revision:  "abc123",
		Uploader:  f.up,
		Signer:    publish.NewSigner(entity),
	})
	require.NoError(t, f.build.OnAllProjectsReady("setup", mod.Apply))

	f.a, err = f.build.Declare("lattices", func(d *project.Declaration) error {
		d.Dir = filepath.Join(root, "lattices")
		d.Layout = layoutFor(t, d.Dir)
		d.Caps = project.Capabilities{Library: true, Publishes: true, Docs: true, Coverage: true}
		d.Meta = project.Metadata{ModuleName: "io.jenetics.lattices", Description: "Lattices"}
		return nil
	})
	require.NoError(t, err)
	f.b, err = f.build.Declare("linealgebra", func(d *project.Declaration) error {
		d.Dir = filepath.Join(root, "linealgebra")
		d.Layout = layoutFor(t, d.Dir)
		d.Caps = project.Capabilities{Library: true}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, f.build.Evaluate(t.Context()))
	return f
}

func readJar(t *testing.T, path string) ([]string, map[string]string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	contents := map[string]string{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		contents[f.Name] = string(data)
	}
	return names, contents
}

func execute(t *testing.T, p *project.Project, targets ...string) map[string]task.Result {
	t.Helper()
	results, err := p.Tasks().Execute(t.Context(), nil, targets...)
	require.NoError(t, err)
	out := make(map[string]task.Result, len(results))
	for _, r := range results {
		out[r.Task] = r
	}
	return out
}

func TestManifestAttributes(t *testing.T) {
	f := newFixture(t, &fakeToolchain{})
	mod := New(Options{Config: testConfig(t.TempDir()), Env: testEnv(), Toolchain: f.tc})

	attrs, err := mod.Manifest(f.a)
	require.NoError(t, err)
	require.Equal(t, []string{
		manifest.ImplementationTitle, manifest.ImplementationVersion, manifest.ImplementationURL,
		manifest.ImplementationVendor, manifest.ProjectName, manifest.Version, manifest.Maintainer,
		manifest.Project, manifest.ProjectVersion, manifest.CreatedWith, manifest.BuiltBy,
		manifest.BuildDate, manifest.BuildJDK, manifest.BuildOSName, manifest.BuildOSArch,
		manifest.BuildOSVersion, manifest.AutomaticModuleName,
	}, attrs.Keys())
	v, _ := attrs.Get(manifest.BuildDate)
	require.Equal(t, "2026-03-04 05:06", v)
	v, _ = attrs.Get(manifest.CreatedWith)
	require.True(t, strings.HasPrefix(v, "jbuild "))
	v, _ = attrs.Get(manifest.Maintainer)
	require.Equal(t, "Franz Wilhelmstötter <franz@example.com>", v)

	attrs, err = mod.Manifest(f.b)
	require.NoError(t, err)
	_, ok := attrs.Get(manifest.AutomaticModuleName)
	require.False(t, ok)
}

func TestSetupRegistersTasks(t *testing.T) {
	f := newFixture(t, &fakeToolchain{})

	require.Equal(t, []string{
		TaskCompile, TaskCompileTest, TaskTest, TaskCoverageReport, TaskJar, TaskBuild,
		docs.TaskJavadoc, docs.TaskColorize, docs.TaskRenderSource, TaskDocs,
		publish.TaskSourcesJar, publish.TaskJavadocJar, publish.TaskPOM, publish.TaskSign, publish.TaskPublish,
	}, f.a.Tasks().Names())
	require.Equal(t, []string{TaskCompile, TaskCompileTest, TaskTest, TaskJar, TaskBuild}, f.b.Tasks().Names())

	compile, _ := f.a.Tasks().Get(TaskCompile)
	spec, ok := task.SpecOf[*jdk.CompileSpec](compile)
	require.True(t, ok)
	require.Equal(t, jdk.LintOptions, spec.Options)
	require.Equal(t, 17, spec.Release)

	test, _ := f.a.Tasks().Get(TaskTest)
	require.Equal(t, []string{TaskCoverageReport}, test.Finalizers())
	jd, _ := f.a.Tasks().Get(publish.TaskJavadocJar)
	require.Equal(t, []string{docs.TaskRenderSource}, jd.Dependencies())

	for _, p := range []*project.Project{f.a, f.b} {
		for tk := range p.Tasks().All() {
			if s, ok := task.SpecOf[*archive.Spec](tk); ok {
				require.NotNil(t, s.Manifest, "%s:%s", p.Name(), tk.Name())
			}
		}
	}
}

func TestSetupIsIdempotent(t *testing.T) {
	f := newFixture(t, &fakeToolchain{})
	snapshot := func(p *project.Project) map[string][]string {
		out := map[string][]string{}
		for tk := range p.Tasks().All() {
			out[tk.Name()] = append(tk.Dependencies(), tk.Finalizers()...)
		}
		return out
	}
	before := snapshot(f.a)
	jar, _ := f.a.Tasks().Get(TaskJar)
	manifestBefore := jar.Spec().(*archive.Spec).Manifest

	mod := New(Options{Config: testConfig(t.TempDir()), Env: testEnv(), Toolchain: f.tc})
	require.NoError(t, mod.Configure(f.a))
	require.NoError(t, mod.Configure(f.a))

	require.Equal(t, before, snapshot(f.a))
	require.True(t, manifestBefore.Equal(jar.Spec().(*archive.Spec).Manifest))
	tags := f.a.DocTask().Tags()
	require.Len(t, tags, len(docs.DefaultTags))
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, &fakeToolchain{})

	results := execute(t, f.a, TaskBuild, publish.TaskPublish)
	for name, r := range results {
		require.Equal(t, task.Succeeded, r.Outcome, "%s: %v", name, r.Err)
	}
	require.Equal(t, docs.SourceRendered, f.a.DocTask().State())
	require.Equal(t, 1, f.tc.covered)

	docsDir := f.a.DocsDir()
	page, err := os.ReadFile(filepath.Join(docsDir, "io", "jenetics", "Grid.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "data-colorized")
	srcPage, err := os.ReadFile(filepath.Join(docsDir, "src-html", "io.jenetics.lattices", "io", "jenetics", "Grid.html"))
	require.NoError(t, err)
	require.Contains(t, string(srcPage), "lattices-0.1.0-SNAPSHOT")
	require.NotContains(t, string(srcPage), "@__identifier__@")

	names, contents := readJar(t, filepath.Join(f.a.BuildDir(), "libs", "lattices-0.1.0-SNAPSHOT.jar"))
	require.Equal(t, "META-INF/", names[0])
	require.Equal(t, manifest.Path, names[1])
	require.True(t, strings.HasPrefix(contents[manifest.Path], "Manifest-Version: 1.0\r\n"))
	require.Contains(t, contents[manifest.Path], "Automatic-Module-Name: io.jenetics.lattices")
	require.Equal(t, "lattices-0.1.0-SNAPSHOT (c) 2022-2026", contents["io/jenetics/about.txt"])

	_, sourcesJar := readJar(t, filepath.Join(f.a.BuildDir(), "libs", "lattices-0.1.0-SNAPSHOT-sources.jar"))
	grid := sourcesJar["io/jenetics/Grid.java"]
	require.Contains(t, grid, "Java Lattice Library (lattices-0.1.0-SNAPSHOT).")
	require.Contains(t, grid, "Copyright (c) 2022-2026")
	require.Empty(t, archive.StandardTokens("lattices", "0.1.0-SNAPSHOT", "2022-2026").Remaining([]byte(grid)))

	_, javadocJar := readJar(t, filepath.Join(f.a.BuildDir(), "libs", "lattices-0.1.0-SNAPSHOT-javadoc.jar"))
	require.Contains(t, javadocJar, "io/jenetics/Grid.html")
	require.Contains(t, f.up.paths, "io/jenetics/lattices/0.1.0-SNAPSHOT/lattices-0.1.0-SNAPSHOT-javadoc.jar.asc")

	results = execute(t, f.b, TaskBuild)
	for name, r := range results {
		require.Equal(t, task.Succeeded, r.Outcome, "%s: %v", name, r.Err)
	}
	require.Nil(t, f.b.DocTask())
	_, contents = readJar(t, filepath.Join(f.b.BuildDir(), "libs", "linealgebra-0.1.0-SNAPSHOT.jar"))
	require.NotContains(t, contents[manifest.Path], "Automatic-Module-Name")
}

func TestDocsFailureHaltsPostProcessing(t *testing.T) {
	f := newFixture(t, &fakeToolchain{javadocErr: stdErrors.New("javadoc: error - 1 error")})

	results := execute(t, f.a, docs.TaskRenderSource, publish.TaskJavadocJar)
	require.Equal(t, task.Failed, results[docs.TaskJavadoc].Outcome)
	require.Equal(t, task.Skipped, results[docs.TaskColorize].Outcome)
	require.Equal(t, task.Skipped, results[docs.TaskRenderSource].Outcome)
	require.Equal(t, task.Skipped, results[publish.TaskJavadocJar].Outcome)
	require.Equal(t, docs.Failed, f.a.DocTask().State())
	require.NoDirExists(t, filepath.Join(f.a.DocsDir(), "src-html"))

	results = execute(t, f.b, TaskBuild)
	require.Equal(t, task.Succeeded, results[TaskBuild].Outcome)
}

func TestDisabledTasksAreNotRegistered(t *testing.T) {
	root := t.TempDir()
	b := lifecycle.New()
	mod := New(Options{Config: testConfig(root), Env: testEnv(), Toolchain: &fakeToolchain{}})
	require.NoError(t, b.OnAllProjectsReady("setup", mod.Apply))
	p, err := b.Declare("lattices", func(d *project.Declaration) error {
		d.Dir = filepath.Join(root, "lattices")
		d.Layout = layoutFor(t, d.Dir)
		d.Caps = project.Capabilities{Library: true, Docs: true}
		d.Disabled = []string{TaskTest, docs.TaskColorize}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, b.Evaluate(t.Context()))

	require.False(t, p.Tasks().Has(TaskTest))
	require.False(t, p.Tasks().Has(docs.TaskColorize))
	rs, ok := p.Tasks().Get(docs.TaskRenderSource)
	require.True(t, ok)
	require.Equal(t, []string{docs.TaskJavadoc}, rs.Dependencies())
	build, _ := p.Tasks().Get(TaskBuild)
	require.Equal(t, []string{TaskJar}, build.Dependencies())
}
