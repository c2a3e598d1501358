package config

import "fmt"

// Default repository coordinates (Sonatype OSSRH).
const (
	DefaultSnapshotURL = "https://oss.sonatype.org/content/repositories/snapshots/"
	DefaultReleaseURL  = "https://oss.sonatype.org/service/local/staging/deploy/maven2/"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&LibraryDefaultApplier{},
			&BuildDefaultApplier{},
			&ToolchainDefaultApplier{},
			&DocsDefaultApplier{},
			&PublishDefaultApplier{},
			&EventsDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// LibraryDefaultApplier handles library identity defaults.
type LibraryDefaultApplier struct{}

func (LibraryDefaultApplier) Domain() string { return "library" }

func (LibraryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Library.Name == "" {
		cfg.Library.Name = cfg.Library.ID
	}
	if cfg.Library.Vendor == "" {
		cfg.Library.Vendor = cfg.Library.Name
	}
	if cfg.Library.SCM.URL == "" {
		cfg.Library.SCM.URL = cfg.Library.URL
	}
	return nil
}

// BuildDefaultApplier handles Build configuration defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.OutputDir == "" {
		cfg.Build.OutputDir = "build"
	}
	if cfg.Build.Parallelism <= 0 {
		cfg.Build.Parallelism = 4
	}
	if cfg.Build.JavaRelease <= 0 {
		cfg.Build.JavaRelease = 11
	}
	return nil
}

// ToolchainDefaultApplier resolves tool executables from PATH by name.
type ToolchainDefaultApplier struct{}

func (ToolchainDefaultApplier) Domain() string { return "toolchain" }

func (ToolchainDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Toolchain.Javac == "" {
		cfg.Toolchain.Javac = "javac"
	}
	if cfg.Toolchain.Javadoc == "" {
		cfg.Toolchain.Javadoc = "javadoc"
	}
	if cfg.Toolchain.Java == "" {
		cfg.Toolchain.Java = "java"
	}
	return nil
}

// DocsDefaultApplier handles documentation defaults.
type DocsDefaultApplier struct{}

func (DocsDefaultApplier) Domain() string { return "docs" }

func (DocsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Docs.Visibility == "" {
		cfg.Docs.Visibility = "protected"
	}
	cfg.Docs.Visibility = NormalizeVisibility(cfg.Docs.Visibility)
	if cfg.Docs.Encoding == "" {
		cfg.Docs.Encoding = "UTF-8"
	}
	if len(cfg.Docs.Exclude) == 0 {
		cfg.Docs.Exclude = []string{"**/internal/**"}
	}
	if len(cfg.Docs.Tags) == 0 {
		cfg.Docs.Tags = []TagConfig{
			{Name: "apiNote", Locations: "a", Label: "API Note:"},
			{Name: "implSpec", Locations: "a", Label: "Implementation Requirements:"},
			{Name: "implNote", Locations: "a", Label: "Implementation Note:"},
		}
	}
	for i := range cfg.Docs.Tags {
		if cfg.Docs.Tags[i].Locations == "" {
			cfg.Docs.Tags[i].Locations = "a"
		}
	}
	return nil
}

// PublishDefaultApplier handles repository and credential defaults.
type PublishDefaultApplier struct{}

func (PublishDefaultApplier) Domain() string { return "publish" }

func (PublishDefaultApplier) ApplyDefaults(cfg *Config) error {
	p := &cfg.Publish
	if p.SnapshotURL == "" {
		p.SnapshotURL = DefaultSnapshotURL
	}
	if p.ReleaseURL == "" {
		p.ReleaseURL = DefaultReleaseURL
	}
	if p.UsernameEnv == "" {
		p.UsernameEnv = "NEXUS_USERNAME"
	}
	if p.PasswordEnv == "" {
		p.PasswordEnv = "NEXUS_PASSWORD"
	}
	if p.SigningKeyEnv == "" {
		p.SigningKeyEnv = "SIGNING_KEY"
	}
	if p.SigningPassphraseEnv == "" {
		p.SigningPassphraseEnv = "SIGNING_PASSWORD"
	}
	if p.Retry.Backoff == "" {
		p.Retry.Backoff = RetryBackoffLinear
	} else if m := NormalizeRetryBackoff(string(p.Retry.Backoff)); m != "" {
		p.Retry.Backoff = m
	}
	if p.Retry.Initial == "" {
		p.Retry.Initial = "1s"
	}
	if p.Retry.Max == "" {
		p.Retry.Max = "30s"
	}
	if p.Retry.MaxRetries == 0 {
		p.Retry.MaxRetries = 2
	}
	p.SigningKeyFile = cfg.Path(p.SigningKeyFile)
	p.StagingDir = cfg.Path(p.StagingDir)
	return nil
}

// EventsDefaultApplier handles notification defaults.
type EventsDefaultApplier struct{}

func (EventsDefaultApplier) Domain() string { return "events" }

func (EventsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "jbuild.outcomes"
	}
	return nil
}
