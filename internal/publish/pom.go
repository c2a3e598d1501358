package publish

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/jbuild/internal/config"
	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

const pomNamespace = "http://maven.apache.org/POM/4.0.0"

// POM is the subset of the Maven project model jbuild publishes.
type POM struct {
	XMLName        xml.Name     `xml:"project"`
	XMLNS          string       `xml:"xmlns,attr"`
	XSI            string       `xml:"xmlns:xsi,attr"`
	SchemaLocation string       `xml:"xsi:schemaLocation,attr"`
	ModelVersion   string       `xml:"modelVersion"`
	GroupID        string       `xml:"groupId"`
	ArtifactID     string       `xml:"artifactId"`
	Version        string       `xml:"version"`
	Packaging      string       `xml:"packaging"`
	Name           string       `xml:"name"`
	Description    string       `xml:"description,omitempty"`
	URL            string       `xml:"url,omitempty"`
	Inception      int          `xml:"inceptionYear,omitempty"`
	Licenses       []POMLicense `xml:"licenses>license,omitempty"`
	Developers     []Developer  `xml:"developers>developer,omitempty"`
	SCM            *POMSCM      `xml:"scm,omitempty"`
}

type POMLicense struct {
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

type Developer struct {
	ID    string `xml:"id,omitempty"`
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
}

type POMSCM struct {
	URL                 string `xml:"url,omitempty"`
	Connection          string `xml:"connection,omitempty"`
	DeveloperConnection string `xml:"developerConnection,omitempty"`
	Tag                 string `xml:"tag,omitempty"`
}

// NewPOM builds the model from library identity. revision becomes scm.tag
// when non-empty.
func NewPOM(lib config.LibraryConfig, coords Coordinates, description, revision string) POM {
	p := POM{
		XMLNS:          pomNamespace,
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: pomNamespace + " https://maven.apache.org/xsd/maven-4.0.0.xsd",
		ModelVersion:   "4.0.0",
		GroupID:        coords.Group,
		ArtifactID:     coords.Artifact,
		Version:        coords.Version,
		Packaging:      "jar",
		Name:           coords.Artifact,
		Description:    description,
		URL:            lib.URL,
		Inception:      lib.CopyrightSince,
	}
	if lib.License.Name != "" {
		p.Licenses = []POMLicense{{Name: lib.License.Name, URL: lib.License.URL}}
	}
	if lib.Author != "" {
		p.Developers = []Developer{{ID: lib.Author, Name: lib.Author, Email: lib.Email}}
	}
	scm := &POMSCM{
		URL:                 lib.SCM.URL,
		Connection:          lib.SCM.Connection,
		DeveloperConnection: lib.SCM.DeveloperConnection,
		Tag:                 revision,
	}
	if *scm != (POMSCM{}) {
		p.SCM = scm
	}
	return p
}

// Encode renders the POM with an XML declaration.
func (p POM) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.PublishError("cannot encode POM").WithCause(err).Build()
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

// WriteFile encodes the POM to path.
func (p POM) WriteFile(path string) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.FileSystemError("cannot create POM directory").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemError("cannot write POM").WithContext("path", path).WithCause(err).Build()
	}
	return nil
}
