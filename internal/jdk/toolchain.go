package jdk

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
)

// LintOptions is the fixed compiler diagnostic set.
var LintOptions = []string{
	"-Xlint:" + strings.Join([]string{
		"auxiliaryclass", "cast", "classfile", "deprecation", "divzero", "empty",
		"exports", "finally", "module", "opens", "rawtypes", "removal", "serial",
		"static", "try", "unchecked", "varargs",
	}, ","),
	"-encoding", "UTF-8",
}

// CompileSpec configures one javac invocation.
type CompileSpec struct {
	Sources   []string
	Classpath []string
	Output    string
	Release   int
	Options   []string
}

// TestSpec configures the test command.
type TestSpec struct {
	Project       string
	ProjectDir    string
	Classes       string
	TestClasses   string
	Classpath     []string
	TestClasspath []string
	Reports       string
	// ExecFile is the coverage execution data file; it is deleted before every run.
	ExecFile string
}

// CoverageSpec configures the coverage report command.
type CoverageSpec struct {
	Project  string
	ExecFile string
	Classes  string
	Sources  []string
	HTML     string
	XML      string
	CSV      string
}

// Toolchain runs javac, javadoc and the configured test/coverage commands.
type Toolchain struct {
	cfg    config.ToolchainConfig
	runner Runner
}

// New creates a toolchain over runner.
func New(cfg config.ToolchainConfig, runner Runner) *Toolchain {
	if runner == nil {
		runner = ExecRunner{Stderr: os.Stderr}
	}
	return &Toolchain{cfg: cfg, runner: runner}
}

// Compile compiles every .java file below spec.Sources. A project without
// sources compiles nothing.
func (t *Toolchain) Compile(ctx context.Context, spec CompileSpec) error {
	files, err := javaFiles(spec.Sources)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		slog.Debug("No sources to compile", logfields.Path(spec.Output))
		return nil
	}
	if err := os.MkdirAll(spec.Output, 0o755); err != nil {
		return errors.FileSystemError("cannot create class output").WithCause(err).Build()
	}
	args := []string{"-d", spec.Output}
	if spec.Release > 0 {
		args = append(args, "--release", strconv.Itoa(spec.Release))
	}
	if len(spec.Classpath) > 0 {
		args = append(args, "-classpath", strings.Join(spec.Classpath, string(os.PathListSeparator)))
	}
	args = append(args, spec.Options...)

	argFile := filepath.Join(filepath.Dir(spec.Output), filepath.Base(spec.Output)+".sources")
	if err := os.WriteFile(argFile, []byte(quoteArgFile(files)), 0o644); err != nil {
		return errors.FileSystemError("cannot write javac argument file").WithCause(err).Build()
	}
	args = append(args, "@"+argFile)
	return t.run(ctx, Command{Name: t.cfg.Javac, Args: args})
}

// Javadoc runs the documentation tool.
func (t *Toolchain) Javadoc(ctx context.Context, args []string) error {
	return t.run(ctx, Command{Name: t.cfg.Javadoc, Args: args})
}

// Test runs the configured test command after deleting stale coverage data.
// Without a test command nothing runs.
func (t *Toolchain) Test(ctx context.Context, spec TestSpec) error {
	if spec.ExecFile != "" {
		if err := os.Remove(spec.ExecFile); err != nil && !os.IsNotExist(err) {
			return errors.FileSystemError("cannot delete coverage data").WithCause(err).Build()
		}
		if err := os.MkdirAll(filepath.Dir(spec.ExecFile), 0o755); err != nil {
			return errors.FileSystemError("cannot create coverage directory").WithCause(err).Build()
		}
	}
	if t.cfg.TestCommand == "" {
		slog.Warn("No test command configured; skipping tests", logfields.Project(spec.Project))
		return nil
	}
	words, err := Expand(t.cfg.TestCommand, map[string]string{
		VarJava:          t.cfg.Java,
		VarProject:       spec.Project,
		VarProjectDir:    spec.ProjectDir,
		VarClasses:       spec.Classes,
		VarTestClasses:   spec.TestClasses,
		VarClasspath:     joinPath(spec.Classpath),
		VarTestClasspath: joinPath(spec.TestClasspath),
		VarReports:       spec.Reports,
		VarExec:          spec.ExecFile,
	})
	if err != nil {
		return err
	}
	return t.run(ctx, Command{Name: words[0], Args: words[1:], Dir: spec.ProjectDir})
}

// Coverage renders html, xml and csv reports from the execution data.
func (t *Toolchain) Coverage(ctx context.Context, spec CoverageSpec) error {
	if t.cfg.CoverageCommand == "" {
		slog.Warn("No coverage command configured; skipping report", logfields.Project(spec.Project))
		return nil
	}
	if _, err := os.Stat(spec.ExecFile); err != nil {
		return errors.ToolchainError("no coverage data recorded").WithContext("path", spec.ExecFile).Build()
	}
	for _, dir := range []string{spec.HTML, filepath.Dir(spec.XML), filepath.Dir(spec.CSV)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileSystemError("cannot create coverage report directory").WithCause(err).Build()
		}
	}
	words, err := Expand(t.cfg.CoverageCommand, map[string]string{
		VarJava:    t.cfg.Java,
		VarProject: spec.Project,
		VarExec:    spec.ExecFile,
		VarClasses: spec.Classes,
		VarSources: joinPath(spec.Sources),
		VarHTML:    spec.HTML,
		VarXML:     spec.XML,
		VarCSV:     spec.CSV,
	})
	if err != nil {
		return err
	}
	return t.run(ctx, Command{Name: words[0], Args: words[1:]})
}

func (t *Toolchain) run(ctx context.Context, c Command) error {
	slog.Debug("Running tool", slog.String("command", c.Name), slog.Int("args", len(c.Args)))
	return t.runner.Run(ctx, c)
}

var versionPattern = regexp.MustCompile(`version "([^"]+)"`)

// Probe asks java for its version. JBUILD_JDK overrides the probe.
func Probe(ctx context.Context, java string) (string, error) {
	if v := os.Getenv("JBUILD_JDK"); v != "" {
		return v, nil
	}
	out, err := Output(ctx, Command{Name: java, Args: []string{"-version"}})
	if err != nil {
		return "", errors.ToolchainError("cannot probe JDK version").WithContext("java", java).WithCause(err).Build()
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts the version from `java -version` output.
func ParseVersion(out string) (string, error) {
	m := versionPattern.FindStringSubmatch(out)
	if m == nil {
		return "", errors.ToolchainError("unrecognized java -version output").Build()
	}
	return m[1], nil
}

func javaFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, ".java") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.FileSystemError("cannot scan sources").WithContext("root", root).WithCause(err).Build()
		}
	}
	slices.Sort(files)
	return files, nil
}

func quoteArgFile(files []string) string {
	var b strings.Builder
	for _, f := range files {
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(filepath.ToSlash(f), `"`, `\"`))
		b.WriteString("\"\n")
	}
	return b.String()
}

func joinPath(parts []string) string { return strings.Join(parts, string(os.PathListSeparator)) }
