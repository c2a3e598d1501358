package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/foundation/normalization"
)

// Visibility levels accepted for documentation generation.
var visibilityLevels = normalization.New(map[string]string{
	"public": "public", "protected": "protected", "package": "package", "private": "private",
})

// NormalizeVisibility lower-cases a known visibility; unknown values are returned unchanged.
func NormalizeVisibility(v string) string {
	if level, ok := visibilityLevels.Lookup(v); ok {
		return level
	}
	return v
}

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	for _, step := range []func() error{
		cv.validateLibrary,
		cv.validateInclude,
		cv.validateDocs,
		cv.validatePublish,
		cv.validateDaemon,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateLibrary() error {
	lib := cv.config.Library
	missing := make([]string, 0, 3)
	if lib.ID == "" {
		missing = append(missing, "library.id")
	}
	if lib.Group == "" {
		missing = append(missing, "library.group")
	}
	if lib.Version == "" {
		missing = append(missing, "library.version")
	}
	if len(missing) > 0 {
		return errors.ConfigError("missing required fields: " + strings.Join(missing, ", ")).Build()
	}
	return nil
}

func (cv *configurationValidator) validateInclude() error {
	if len(cv.config.Include) == 0 {
		return errors.ConfigError("no projects included").Build()
	}
	seen := make(map[string]struct{}, len(cv.config.Include))
	for _, inc := range cv.config.Include {
		clean := filepath.Clean(inc)
		if inc == "" || filepath.IsAbs(inc) || strings.HasPrefix(clean, "..") {
			return errors.ConfigError("include entries must be relative paths inside the build root").
				WithContext("include", inc).Build()
		}
		if _, dup := seen[clean]; dup {
			return errors.ConfigError("project directory included twice").WithContext("include", inc).Build()
		}
		seen[clean] = struct{}{}
	}
	return nil
}

func (cv *configurationValidator) validateDocs() error {
	if err := ValidateVisibility(cv.config.Docs.Visibility); err != nil {
		return err
	}
	for i, tag := range cv.config.Docs.Tags {
		if tag.Name == "" || tag.Label == "" {
			return errors.ConfigError(fmt.Sprintf("docs.tags[%d] requires name and label", i)).Build()
		}
	}
	for i, link := range cv.config.Docs.Links {
		if link.URL == "" {
			return errors.ConfigError(fmt.Sprintf("docs.links[%d] requires url", i)).Build()
		}
	}
	return nil
}

// ValidateVisibility checks a documentation visibility threshold.
func ValidateVisibility(v string) error {
	if _, ok := visibilityLevels.Lookup(v); ok {
		return nil
	}
	return errors.ConfigError("invalid docs visibility").
		WithContext("visibility", v).
		WithContext("allowed", strings.Join(visibilityLevels.Keys(), "|")).Build()
}

func (cv *configurationValidator) validatePublish() error {
	p := cv.config.Publish
	for name, raw := range map[string]string{"publish.snapshot_url": p.SnapshotURL, "publish.release_url": p.ReleaseURL} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
			return errors.ConfigError("repository url must use http, https or file scheme").
				WithContext("field", name).WithContext("url", raw).Build()
		}
	}
	for name, raw := range map[string]string{"publish.retry.initial": p.Retry.Initial, "publish.retry.max": p.Retry.Max} {
		if _, err := time.ParseDuration(raw); err != nil {
			return errors.ConfigError("invalid duration").WithContext("field", name).WithCause(err).Build()
		}
	}
	if NormalizeRetryBackoff(string(p.Retry.Backoff)) == "" {
		return errors.ConfigError("invalid publish.retry.backoff").
			WithContext("backoff", string(p.Retry.Backoff)).Build()
	}
	if p.Retry.MaxRetries < 0 {
		return errors.ConfigError("publish.retry.max_retries cannot be negative").Build()
	}
	return nil
}

func (cv *configurationValidator) validateDaemon() error {
	d := cv.config.Daemon
	if d.Interval != "" && d.Cron != "" {
		return errors.ConfigError("daemon.interval and daemon.cron are mutually exclusive").Build()
	}
	if d.Interval != "" {
		if iv, err := time.ParseDuration(d.Interval); err != nil || iv <= 0 {
			return errors.ConfigError("invalid daemon.interval").WithContext("interval", d.Interval).Build()
		}
	}
	if d.Cron != "" {
		if len(strings.Fields(d.Cron)) != 5 {
			return errors.ConfigError("daemon.cron must have five fields").WithContext("cron", d.Cron).Build()
		}
	}
	return nil
}
