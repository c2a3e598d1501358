package publish

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/jbuild/internal/config"
)

// Credentials authenticate uploads.
type Credentials struct {
	Username string
	Password string
	// Placeholder is set when at least one value fell back to its variable name.
	Placeholder bool
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ResolveCredentials reads the username and password from the variables named
// in cfg. A missing variable yields its own name as an inert value and a
// warning; it is never an error.
func ResolveCredentials(cfg config.PublishConfig, lookup LookupFunc) Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var c Credentials
	value := func(name string) string {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		c.Placeholder = true
		slog.Warn("Repository credential not set; using placeholder", slog.String("variable", name))
		return name
	}
	c.Username = value(cfg.UsernameEnv)
	c.Password = value(cfg.PasswordEnv)
	return c
}
