package jdk

import (
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Template placeholders.
const (
	VarJava          = "java"
	VarProject       = "project"
	VarProjectDir    = "project_dir"
	VarClasses       = "classes"
	VarTestClasses   = "test_classes"
	VarClasspath     = "classpath"
	VarTestClasspath = "test_classpath"
	VarSources       = "sources"
	VarExec          = "exec"
	VarReports       = "reports"
	VarHTML          = "html"
	VarXML           = "xml"
	VarCSV           = "csv"
)

// Expand splits a shell-like command template into words and replaces
// {placeholder} references inside each word. Values are never re-split, so
// paths containing spaces stay single arguments. Unknown placeholders are an
// error.
func Expand(template string, vars map[string]string) ([]string, error) {
	words, err := shellwords.Parse(template)
	if err != nil {
		return nil, errors.ConfigError("invalid command template").
			WithContext("template", template).WithCause(err).Build()
	}
	if len(words) == 0 {
		return nil, errors.ConfigError("empty command template").Build()
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	replacer := strings.NewReplacer(pairs...)
	out := make([]string, len(words))
	for i, w := range words {
		expanded := replacer.Replace(w)
		if open := strings.Index(expanded, "{"); open >= 0 {
			if end := strings.Index(expanded[open:], "}"); end > 0 && isPlaceholder(expanded[open+1:open+end]) {
				return nil, errors.ConfigError("unknown command template placeholder").
					WithContext("placeholder", expanded[open:open+end+1]).Build()
			}
		}
		out[i] = expanded
	}
	return out, nil
}

func isPlaceholder(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
