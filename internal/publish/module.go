package publish

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/jbuild/internal/archive"
	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
	"git.home.luguber.info/inful/jbuild/internal/manifest"
	"git.home.luguber.info/inful/jbuild/internal/project"
	"git.home.luguber.info/inful/jbuild/internal/retry"
	"git.home.luguber.info/inful/jbuild/internal/task"
)

// Task names registered by Configure.
const (
	TaskSourcesJar = "sourcesJar"
	TaskJavadocJar = "javadocJar"
	TaskPOM        = "pom"
	TaskSign       = "sign"
	TaskPublish    = "publish"
)

// Classifiers of the secondary archives.
const (
	ClassifierSources = "sources"
	ClassifierJavadoc = "javadoc"
)

// Options carry the build-wide inputs of the publication chain.
type Options struct {
	Config *config.Config
	Tokens archive.Tokens
	// JarTask names the already registered main archive task.
	JarTask string
	// DocsTask is the last task of the documentation chain; javadocJar depends on it.
	DocsTask string
	// Revision is stamped into the POM as scm.tag.
	Revision string
	DryRun   bool
	Lookup   LookupFunc
	// Uploader and Signer override the configured transport and key.
	Uploader Uploader
	Signer   *Signer
}

// POMSpec is the spec of the pom task.
type POMSpec struct {
	Path  string
	Model POM
}

// Publication is the spec of the sign and publish tasks.
type Publication struct {
	Coordinates Coordinates
	Target      string
	// Archives lists the tasks whose outputs are published, with their classifiers.
	Archives map[string]string
	Order    []string
}

// ProjectCoordinates derives the coordinates of p from project metadata,
// falling back to the library identity.
func ProjectCoordinates(p *project.Project, lib config.LibraryConfig) Coordinates {
	meta := p.Metadata()
	c := Coordinates{Group: meta.Group, Artifact: p.ArtifactID(), Version: meta.Version}
	if c.Group == "" {
		c.Group = lib.Group
	}
	if c.Version == "" {
		c.Version = lib.Version
	}
	return c
}

// Configure registers the publication chain on p. Calling it again converges
// on the same tasks. Tasks the project disabled are not registered and edges
// to them are dropped.
func Configure(p *project.Project, o Options) error {
	if o.Config == nil {
		return errors.InternalError("publish configured without build config").Build()
	}
	if o.JarTask == "" {
		return errors.InternalError("publish configured without main archive").Build()
	}
	c := p.Tasks()
	cfg := o.Config
	coords := ProjectCoordinates(p, cfg.Library)
	layout := p.Layout()
	libs := filepath.Join(p.BuildDir(), "libs")

	register := func(name string, action task.Action, deps ...string) *task.Task {
		if p.Disabled(name) {
			return nil
		}
		t, _ := c.Register(name, action)
		for _, d := range deps {
			if d != "" && c.Has(d) {
				t.DependsOn(d)
			}
		}
		return t
	}

	pub := &Publication{
		Coordinates: coords,
		Target:      SelectTarget(cfg.Publish, coords.Version),
		Archives:    map[string]string{},
	}
	addArchive := func(name, classifier string) {
		if c.Has(name) {
			pub.Archives[name] = classifier
			pub.Order = append(pub.Order, name)
		}
	}

	if t := register(TaskSourcesJar, archive.Action); t != nil {
		contents := make([]archive.Content, 0, len(layout.Sources)+len(layout.Resources))
		for _, s := range layout.Sources {
			contents = append(contents, archive.Content{Root: s, Substitute: true})
		}
		for _, r := range layout.Resources {
			contents = append(contents, archive.Content{Root: r, Substitute: true})
		}
		t.Describe("Assembles the sources jar").SetSpec(&archive.Spec{
			Path:     filepath.Join(libs, coords.FileName(ClassifierSources, "jar")),
			Manifest: existingManifest(t),
			Contents: contents,
			Tokens:   o.Tokens,
		})
	}

	if doc := p.DocTask(); doc != nil {
		if t := register(TaskJavadocJar, archive.Action, o.DocsTask); t != nil {
			t.Describe("Assembles the javadoc jar").SetSpec(&archive.Spec{
				Path:     filepath.Join(libs, coords.FileName(ClassifierJavadoc, "jar")),
				Manifest: existingManifest(t),
				Contents: []archive.Content{{Root: doc.OutputDir}},
				Tokens:   o.Tokens,
			})
		}
	}

	if t := register(TaskPOM, pomAction); t != nil {
		t.Describe("Generates the Maven POM").SetSpec(&POMSpec{
			Path:  filepath.Join(p.BuildDir(), "publications", coords.FileName("", "pom")),
			Model: NewPOM(cfg.Library, coords, p.Metadata().Description, o.Revision),
		})
	}

	addArchive(o.JarTask, "")
	addArchive(TaskSourcesJar, ClassifierSources)
	addArchive(TaskJavadocJar, ClassifierJavadoc)
	addArchive(TaskPOM, "")

	if t := register(TaskSign, signAction(c, o)); t != nil {
		t.Describe("Signs publication artifacts")
		for _, name := range pub.Order {
			t.DependsOn(name)
		}
		t.SetSpec(pub)
	}
	if t := register(TaskPublish, publishAction(c, o), TaskSign); t != nil {
		t.Describe("Uploads the publication").SetSpec(pub)
		if !c.Has(TaskSign) {
			for _, name := range pub.Order {
				t.DependsOn(name)
			}
		}
	}
	return nil
}

// existingManifest keeps a manifest that was attached on an earlier pass.
func existingManifest(t *task.Task) *manifest.Attributes {
	if s, ok := task.SpecOf[*archive.Spec](t); ok && s != nil {
		return s.Manifest
	}
	return nil
}

func pomAction(_ context.Context, t *task.Task) error {
	spec, ok := task.SpecOf[*POMSpec](t)
	if !ok || spec == nil {
		return errors.InternalError("pom task has no spec").Build()
	}
	return spec.Model.WriteFile(spec.Path)
}

// artifacts resolves the files of a publication from the specs of its tasks.
func artifacts(c *task.Container, pub *Publication) ([]Artifact, error) {
	out := make([]Artifact, 0, len(pub.Order))
	for _, name := range pub.Order {
		t, ok := c.Get(name)
		if !ok {
			return nil, errors.InternalError("publication task missing").WithTask(name).Build()
		}
		switch spec := t.Spec().(type) {
		case *archive.Spec:
			out = append(out, Artifact{File: spec.Path, Classifier: pub.Archives[name], Extension: "jar"})
		case *POMSpec:
			out = append(out, Artifact{File: spec.Path, Extension: "pom"})
		default:
			return nil, errors.InternalError("publication task has no output").WithTask(name).Build()
		}
	}
	return out, nil
}

func signAction(c *task.Container, o Options) task.Action {
	return func(_ context.Context, t *task.Task) error {
		pub, ok := task.SpecOf[*Publication](t)
		if !ok {
			return errors.InternalError("sign task has no publication").Build()
		}
		signer := o.Signer
		if signer == nil {
			var err error
			if signer, err = LoadSigner(o.Config.Publish, o.Lookup); err != nil {
				return err
			}
		}
		files, err := artifacts(c, pub)
		if err != nil {
			return err
		}
		for _, a := range files {
			sig, err := signer.SignFile(a.File)
			if err != nil {
				return err
			}
			slog.Debug("Signed artifact", logfields.Path(sig))
		}
		return nil
	}
}

func publishAction(c *task.Container, o Options) task.Action {
	return func(ctx context.Context, t *task.Task) error {
		pub, ok := task.SpecOf[*Publication](t)
		if !ok {
			return errors.InternalError("publish task has no publication").Build()
		}
		up := o.Uploader
		if up == nil {
			staging := o.Config.Publish.StagingDir
			if staging == "" {
				staging = filepath.Join(o.Config.RootDir, o.Config.Build.OutputDir, "staging")
			}
			var err error
			up, err = NewUploader(pub.Target, ResolveCredentials(o.Config.Publish, o.Lookup),
				retry.FromConfig(o.Config.Publish.Retry), o.DryRun, staging)
			if err != nil {
				return err
			}
		}
		files, err := artifacts(c, pub)
		if err != nil {
			return err
		}
		signed := c.Has(TaskSign)
		for _, a := range files {
			rel := pub.Coordinates.Path(a.Classifier, a.Extension)
			if err := uploadWithSidecars(ctx, up, rel, a.File); err != nil {
				return err
			}
			if signed {
				if err := uploadWithSidecars(ctx, up, rel+SignatureExt, a.File+SignatureExt); err != nil {
					return err
				}
			}
		}
		slog.Info("Published artifacts",
			slog.String("coordinates", pub.Coordinates.Group+":"+pub.Coordinates.Artifact+":"+pub.Coordinates.Version),
			logfields.URL(pub.Target), slog.Bool("dry_run", o.DryRun), slog.Int("artifacts", len(files)))
		return nil
	}
}

func uploadWithSidecars(ctx context.Context, up Uploader, rel, file string) error {
	sums, err := WriteChecksums(file)
	if err != nil {
		return err
	}
	if err := up.Upload(ctx, rel, file); err != nil {
		return err
	}
	for _, s := range sums {
		if err := up.Upload(ctx, rel+filepath.Ext(s), s); err != nil {
			return err
		}
	}
	return nil
}
