package publish

import (
	"path"
	"strings"
)

// Coordinates identify a publication in a Maven repository.
type Coordinates struct {
	Group    string
	Artifact string
	Version  string
}

// Dir is the repository-relative directory of the publication.
func (c Coordinates) Dir() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version)
}

// FileName is "<artifact>-<version>[-classifier].<ext>".
func (c Coordinates) FileName(classifier, ext string) string {
	name := c.Artifact + "-" + c.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + ext
}

// Path is the repository-relative path of one file.
func (c Coordinates) Path(classifier, ext string) string {
	return path.Join(c.Dir(), c.FileName(classifier, ext))
}

// Artifact is one file of a publication.
type Artifact struct {
	File       string
	Classifier string
	Extension  string
}
