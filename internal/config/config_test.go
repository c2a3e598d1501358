package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

const minimalConfig = `library:
  id: lattices
  group: io.jenetics
  version: 0.1.0-SNAPSHOT
include:
  - lattices
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	writeFile(t, path, minimalConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.RootDir)
	require.Equal(t, "lattices", cfg.Library.Name)
	require.Equal(t, "lattices", cfg.Library.Vendor)
	require.Equal(t, "build", cfg.Build.OutputDir)
	require.Equal(t, 4, cfg.Build.Parallelism)
	require.Equal(t, "protected", cfg.Docs.Visibility)
	require.Equal(t, "UTF-8", cfg.Docs.Encoding)
	require.Equal(t, []string{"**/internal/**"}, cfg.Docs.Exclude)
	require.Len(t, cfg.Docs.Tags, 3)
	require.Equal(t, TagConfig{Name: "implSpec", Locations: "a", Label: "Implementation Requirements:"}, cfg.Docs.Tags[1])
	require.Equal(t, DefaultSnapshotURL, cfg.Publish.SnapshotURL)
	require.Equal(t, "NEXUS_USERNAME", cfg.Publish.UsernameEnv)
	require.Equal(t, RetryBackoffLinear, cfg.Publish.Retry.Backoff)
	require.Equal(t, "jbuild.outcomes", cfg.Events.Subject)
	require.True(t, Enabled(cfg.Docs.Colorize))
}

func TestLoadResolvesPublishPathsAgainstRoot(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "staging")
	path := filepath.Join(dir, DefaultFile)
	writeFile(t, path, minimalConfig+`publish:
  signing_key_file: keys/signing.asc
  staging_dir: `+abs+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "keys", "signing.asc"), cfg.Publish.SigningKeyFile)
	require.Equal(t, abs, cfg.Publish.StagingDir)
	require.Equal(t, filepath.Join(dir, "build", "history.db"), cfg.Path(filepath.Join("build", "history.db")))
	require.Empty(t, cfg.Path(""))
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("JBUILD_TEST_VERSION", "2.0.0")
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	writeFile(t, path, `library:
  id: lattices
  group: io.jenetics
  version: ${JBUILD_TEST_VERSION}
include: [lattices]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", cfg.Library.Version)
}

func TestLoadReadsEnvFileWithoutOverriding(t *testing.T) {
	t.Setenv("JBUILD_TEST_KEEP", "process")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "JBUILD_TEST_KEEP=file\nJBUILD_TEST_FROM_FILE=1.2.3\n")
	t.Cleanup(func() { _ = os.Unsetenv("JBUILD_TEST_FROM_FILE") })
	path := filepath.Join(dir, DefaultFile)
	writeFile(t, path, `library:
  id: lattices
  group: io.jenetics
  version: ${JBUILD_TEST_FROM_FILE}
  vendor: ${JBUILD_TEST_KEEP}
include: [lattices]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "1.2.3", cfg.Library.Version)
	require.Equal(t, "process", cfg.Library.Vendor)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing identity", "include: [a]\n"},
		{"no includes", "library: {id: x, group: g, version: '1'}\n"},
		{"escaping include", "library: {id: x, group: g, version: '1'}\ninclude: [../other]\n"},
		{"duplicate include", "library: {id: x, group: g, version: '1'}\ninclude: [a, ./a]\n"},
		{"bad visibility", "library: {id: x, group: g, version: '1'}\ninclude: [a]\ndocs: {visibility: secret}\n"},
		{"bad repository", "library: {id: x, group: g, version: '1'}\ninclude: [a]\npublish: {release_url: 'ftp://x'}\n"},
		{"bad retry", "library: {id: x, group: g, version: '1'}\ninclude: [a]\npublish: {retry: {initial: soon}}\n"},
		{"daemon conflict", "library: {id: x, group: g, version: '1'}\ninclude: [a]\ndaemon: {interval: 1h, cron: '0 * * * *'}\n"},
		{"unknown field", "library: {id: x, group: g, version: '1'}\ninclude: [a]\nbogus: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			ce, ok := errors.AsClassified(err)
			require.True(t, ok)
			require.Equal(t, errors.CategoryConfig, ce.Category())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
}

func TestLoadProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "linealgebra")
	writeFile(t, filepath.Join(dir, ProjectFileName), `description: Linear algebra
module_name: io.jenetics.linealgebra
plugins: [java-library, Maven-Publish]
disable: [test]
`)

	pf, err := LoadProject(dir)
	require.NoError(t, err)
	require.Equal(t, "linealgebra", pf.Name)
	require.Equal(t, dir, pf.Dir)
	require.Equal(t, []string{"src/main/java"}, pf.Sources)
	require.True(t, pf.HasPlugin(PluginJavaLibrary))
	require.True(t, pf.HasPlugin(PluginMavenPublish))
	require.False(t, pf.HasPlugin(PluginJavadoc))
	require.True(t, pf.Disabled("test"))
	require.False(t, pf.Disabled("jar"))
}

func TestLoadProjectRejectsBadVisibility(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFileName), "docs: {visibility: everything}\n")

	_, err := LoadProject(dir)
	require.Error(t, err)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "io.jenetics", cfg.Library.Group)
}

func TestSnapshotChangesWithBuildFields(t *testing.T) {
	a := &Config{Library: LibraryConfig{ID: "x", Version: "1"}, Include: []string{"a"}}
	b := &Config{Library: LibraryConfig{ID: "x", Version: "1"}, Include: []string{"a"}}
	require.Equal(t, a.Snapshot(), b.Snapshot())

	b.Library.Version = "2"
	require.NotEqual(t, a.Snapshot(), b.Snapshot())

	b.Library.Version = "1"
	b.Events.NATSURL = "nats://localhost:4222"
	require.Equal(t, a.Snapshot(), b.Snapshot())

	require.Empty(t, (*Config)(nil).Snapshot())
}

func TestNormalizeRetryBackoff(t *testing.T) {
	require.Equal(t, RetryBackoffExponential, NormalizeRetryBackoff(" Exponential "))
	require.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("random"))
}

func TestNormalizeVisibility(t *testing.T) {
	require.Equal(t, "package", NormalizeVisibility(" Package "))
	require.Equal(t, "friends", NormalizeVisibility("friends"))
	require.NoError(t, ValidateVisibility("PRIVATE"))
	require.Error(t, ValidateVisibility("friends"))
}
