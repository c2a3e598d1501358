package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// DefaultFile is the build file name looked up when no path is given.
const DefaultFile = "jbuild.yaml"

// ProjectFileName is the declaration file inside every included directory.
const ProjectFileName = "project.yaml"

// Load reads the build file, expands ${VAR} references, applies defaults and validates.
func Load(configPath string) (*Config, error) {
	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, errors.FileSystemError("cannot resolve build root").WithCause(err).Build()
	}
	loadEnvFiles(root)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.ConfigError("failed to read config file").WithCause(err).Build()
	}

	var cfg Config
	if err := decodeStrict(data, &cfg); err != nil {
		return nil, errors.ConfigError("failed to parse config file").
			WithContext("path", configPath).WithCause(err).Build()
	}
	cfg.RootDir = root

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, errors.ConfigError("failed to apply defaults").WithCause(err).Build()
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadProject reads one subproject declaration from dir.
func LoadProject(dir string) (*ProjectFile, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError("cannot read project declaration").
			WithContext("path", path).WithCause(err).Build()
	}
	var pf ProjectFile
	if err := decodeStrict(data, &pf); err != nil {
		return nil, errors.ConfigError("failed to parse project declaration").
			WithContext("path", path).WithCause(err).Build()
	}
	pf.Dir = dir
	if pf.Name == "" {
		pf.Name = filepath.Base(dir)
	}
	if len(pf.Sources) == 0 {
		pf.Sources = []string{"src/main/java"}
	}
	if len(pf.Resources) == 0 {
		pf.Resources = []string{"src/main/resources"}
	}
	if len(pf.Tests) == 0 {
		pf.Tests = []string{"src/test/java"}
	}
	if pf.Docs.Visibility != "" {
		pf.Docs.Visibility = NormalizeVisibility(pf.Docs.Visibility)
		if err := ValidateVisibility(pf.Docs.Visibility); err != nil {
			return nil, err
		}
	}
	return &pf, nil
}

// ProjectDir resolves an include entry against the build root.
func (c *Config) ProjectDir(include string) string {
	return filepath.Join(c.RootDir, filepath.Clean(include))
}

// Path resolves a configured file path against the build root. Empty and
// absolute paths are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.RootDir == "" {
		return p
	}
	return filepath.Join(c.RootDir, p)
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(data)))))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// loadEnvFiles loads .env and .env.local from the build root. Variables already
// present in the process environment are never overwritten.
func loadEnvFiles(root string) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}

// Init writes an example build file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Config{
		Library: LibraryConfig{
			ID:             "lattices",
			Name:           "Lattices",
			Group:          "io.jenetics",
			Version:        "0.1.0-SNAPSHOT",
			URL:            "https://github.com/jenetics/lattices",
			Author:         "Franz Wilhelmstötter",
			Email:          "franz.wilhelmstoetter@gmail.com",
			CopyrightSince: 2022,
			License: License{
				Name: "The Apache Software License, Version 2.0",
				URL:  "http://www.apache.org/licenses/LICENSE-2.0.txt",
			},
			SCM: SCM{
				URL:                 "https://github.com/jenetics/lattices",
				Connection:          "scm:git:https://github.com/jenetics/lattices.git",
				DeveloperConnection: "scm:git:https://github.com/jenetics/lattices.git",
			},
		},
		Include: []string{"lattices"},
		Build:   BuildConfig{OutputDir: "build", Parallelism: 4, JavaRelease: 17},
		Docs: DocsConfig{
			Visibility: "protected",
			Links: []LinkConfig{
				{URL: "https://docs.oracle.com/en/java/javase/17/docs/api", PackageList: "buildSrc/resources/javadoc/java.base"},
			},
		},
		Publish: PublishConfig{
			SnapshotURL: DefaultSnapshotURL,
			ReleaseURL:  DefaultReleaseURL,
			UsernameEnv: "NEXUS_USERNAME",
			PasswordEnv: "NEXUS_PASSWORD",
			Retry:       RetryConfig{Backoff: RetryBackoffLinear, Initial: "1s", Max: "30s", MaxRetries: 2},
		},
		Metrics: MetricsConfig{Textfile: "build/jbuild.prom"},
		History: HistoryConfig{Database: "build/jbuild-history.db"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write config file").WithContext("path", configPath).WithCause(err).Build()
	}
	return nil
}
