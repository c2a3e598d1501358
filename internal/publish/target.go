package publish

import (
	"strings"

	"git.home.luguber.info/inful/jbuild/internal/config"
)

// SnapshotSuffix marks versions routed to the snapshot repository. The match
// is case-sensitive.
const SnapshotSuffix = "SNAPSHOT"

// IsSnapshot reports whether version ends with SnapshotSuffix.
func IsSnapshot(version string) bool {
	return strings.HasSuffix(version, SnapshotSuffix)
}

// SelectTarget returns the repository URL for version.
func SelectTarget(cfg config.PublishConfig, version string) string {
	if IsSnapshot(version) {
		return cfg.SnapshotURL
	}
	return cfg.ReleaseURL
}
