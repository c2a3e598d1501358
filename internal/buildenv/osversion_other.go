//go:build !unix

package buildenv

func osVersion() string { return "unknown" }
