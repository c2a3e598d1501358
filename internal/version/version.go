// Package version identifies the jbuild binary.
package version

import "runtime/debug"

// Name is stamped into the Created-With manifest attribute.
const Name = "jbuild"

// Version and Commit are set with
// -ldflags "-X git.home.luguber.info/inful/jbuild/internal/version.Version=v1.2.0".
var (
	Version = ""
	Commit  = ""
)

// Resolved returns Version, falling back to the module version recorded by
// go install and finally to "dev".
func Resolved() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// String is the --version output.
func String() string {
	if Commit == "" {
		return Name + " " + Resolved()
	}
	return Name + " " + Resolved() + " (" + Commit + ")"
}

// CreatedWith returns the value of the Created-With manifest attribute.
func CreatedWith() string {
	return Name + " " + Resolved()
}
