package config

import (
	"slices"
	"strings"
)

// Plugin identifiers a subproject may apply in its project.yaml.
const (
	PluginJavaLibrary  = "java-library"
	PluginJava         = "java"
	PluginMavenPublish = "maven-publish"
	PluginJavadoc      = "javadoc"
	PluginCoverage     = "coverage"
)

// ProjectFile is a subproject declaration (project.yaml).
type ProjectFile struct {
	Name          string          `yaml:"name,omitempty"`
	Description   string          `yaml:"description,omitempty"`
	Version       string          `yaml:"version,omitempty"`
	ModuleName    string          `yaml:"module_name,omitempty"`
	Plugins       []string        `yaml:"plugins,omitempty"`
	Sources       []string        `yaml:"sources,omitempty"`
	Resources     []string        `yaml:"resources,omitempty"`
	Tests         []string        `yaml:"tests,omitempty"`
	Classpath     []string        `yaml:"classpath,omitempty"`
	TestClasspath []string        `yaml:"test_classpath,omitempty"`
	Docs          ProjectDocsFile `yaml:"docs,omitempty"`
	// Disable lists task names that are never registered for this project.
	Disable []string `yaml:"disable,omitempty"`

	// Dir is the subproject directory, resolved against the build root.
	Dir string `yaml:"-"`
}

// ProjectDocsFile overrides build-wide documentation options for one project.
type ProjectDocsFile struct {
	Visibility string   `yaml:"visibility,omitempty"`
	Overview   string   `yaml:"overview,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
}

// HasPlugin matches plugin ids case-insensitively.
func (p *ProjectFile) HasPlugin(id string) bool {
	return slices.ContainsFunc(p.Plugins, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), id)
	})
}

// Disabled reports whether a task name is listed under disable.
func (p *ProjectFile) Disabled(task string) bool {
	return slices.Contains(p.Disable, task)
}
