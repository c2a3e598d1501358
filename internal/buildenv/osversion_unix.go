//go:build unix

package buildenv

import (
	"strings"

	"golang.org/x/sys/unix"
)

func osVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "unknown"
	}
	return strings.TrimRight(string(u.Release[:]), "\x00")
}
