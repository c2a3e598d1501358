package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/lifecycle"
	"git.home.luguber.info/inful/jbuild/internal/project"
)

// LoadProjects reads every included project.yaml concurrently. The result is
// in include order.
func LoadProjects(ctx context.Context, cfg *config.Config) ([]*config.ProjectFile, error) {
	files := make([]*config.ProjectFile, len(cfg.Include))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Build.Parallelism, 1))
	for i, inc := range cfg.Include {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := config.LoadProject(cfg.ProjectDir(inc))
			if err != nil {
				return err
			}
			files[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// DeclareAll registers the loaded projects on b in order.
func DeclareAll(b *lifecycle.Build, cfg *config.Config, files []*config.ProjectFile) error {
	for _, pf := range files {
		if _, err := b.Declare(pf.Name, declaration(cfg, pf)); err != nil {
			return err
		}
	}
	return nil
}

func declaration(cfg *config.Config, pf *config.ProjectFile) func(*project.Declaration) error {
	return func(d *project.Declaration) error {
		d.Dir = pf.Dir
		d.Caps = project.Capabilities{
			Library:   pf.HasPlugin(config.PluginJavaLibrary) || pf.HasPlugin(config.PluginJava),
			Publishes: pf.HasPlugin(config.PluginMavenPublish),
			Docs:      pf.HasPlugin(config.PluginJavadoc),
			Coverage:  pf.HasPlugin(config.PluginCoverage),
		}
		d.Meta = project.Metadata{
			ModuleName:  pf.ModuleName,
			Description: pf.Description,
			Version:     pf.Version,
			Group:       cfg.Library.Group,
		}
		if d.Meta.Version == "" {
			d.Meta.Version = cfg.Library.Version
		}
		sources := resolveAll(pf.Dir, pf.Sources)
		d.Layout = project.Layout{
			Sources:       sources,
			Resources:     resolveAll(pf.Dir, pf.Resources),
			Tests:         resolveAll(pf.Dir, pf.Tests),
			Classpath:     resolveAll(pf.Dir, pf.Classpath),
			TestClasspath: resolveAll(pf.Dir, pf.TestClasspath),
			Overview:      overview(pf, sources),
			BuildDir:      resolve(pf.Dir, cfg.Build.OutputDir),
		}
		d.Disabled = pf.Disable
		d.DocsVisibility = pf.Docs.Visibility
		d.DocsExclude = pf.Docs.Exclude
		return nil
	}
}

// overview returns the configured overview or the first overview.md or
// overview.html found in a source root.
func overview(pf *config.ProjectFile, sources []string) string {
	if pf.Docs.Overview != "" {
		return resolve(pf.Dir, pf.Docs.Overview)
	}
	for _, root := range sources {
		for _, name := range []string{"overview.md", "overview.html"} {
			p := filepath.Join(root, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}

func resolveAll(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolve(dir, p))
	}
	return out
}
