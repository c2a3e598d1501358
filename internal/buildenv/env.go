// Package buildenv captures the facts about the invoking environment that are
// stamped into artifacts. The snapshot is taken once per run and never changes.
package buildenv

import (
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"
)

// DateLayout is the Build-Date format.
const DateLayout = "2006-01-02 15:04"

// Env is an immutable build environment snapshot.
type Env struct {
	now           time.Time
	copyrightYear string
	jdk           string
	osName        string
	osArch        string
	osVersion     string
	user          string
}

// Options controls Capture. Zero values select live system facts.
type Options struct {
	// Now overrides the clock.
	Now time.Time
	// CopyrightSince is the first copyright year; zero means the current year only.
	CopyrightSince int
	// JDK is the probed or overridden JDK version.
	JDK string
	// User overrides the invoking user name.
	User string
}

// Capture takes the snapshot.
func Capture(opts Options) Env {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	u := opts.User
	if u == "" {
		u = currentUser()
	}
	jdk := opts.JDK
	if jdk == "" {
		jdk = "unknown"
	}
	return Env{
		now:           now,
		copyrightYear: CopyrightYears(opts.CopyrightSince, now.Year()),
		jdk:           jdk,
		osName:        osName(runtime.GOOS),
		osArch:        runtime.GOARCH,
		osVersion:     osVersion(),
		user:          u,
	}
}

// CopyrightYears renders "since-year", or only year when since is unset or not earlier.
func CopyrightYears(since, year int) string {
	if since <= 0 || since >= year {
		return strconv.Itoa(year)
	}
	return strconv.Itoa(since) + "-" + strconv.Itoa(year)
}

func (e Env) Now() time.Time        { return e.now }
func (e Env) Year() int             { return e.now.Year() }
func (e Env) CopyrightYear() string { return e.copyrightYear }
func (e Env) BuildDate() string     { return e.now.Format(DateLayout) }
func (e Env) JDK() string           { return e.jdk }
func (e Env) OSName() string        { return e.osName }
func (e Env) OSArch() string        { return e.osArch }
func (e Env) OSVersion() string     { return e.osVersion }
func (e Env) User() string          { return e.user }

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

func osName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Mac OS X"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	default:
		return goos
	}
}
