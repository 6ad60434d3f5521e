package pom

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"

	"github.com/ato/corvoid/pkg/errors"
)

// Parse decodes a POM document. Missing groupId and version fall back to
// the parent's; packaging defaults to "jar". Values are trimmed of
// surrounding whitespace.
func Parse(r io.Reader) (*Model, error) {
	return decode(r, "pom")
}

func decode(r io.Reader, name string) (*Model, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var m Model
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "malformed %s", name)
	}
	m.trim()

	if m.Parent != nil {
		if m.GroupID == "" {
			m.GroupID = m.Parent.GroupID
		}
		if m.Version == "" {
			m.Version = m.Parent.Version
		}
	}
	if m.Packaging == "" {
		m.Packaging = DefaultType
	}
	if m.ArtifactID == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s has no artifactId", name)
	}
	return &m, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Model, error) {
	return Parse(bytes.NewReader(data))
}

// ReadFile parses the POM at path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "pom %s", path)
		}
		return nil, fmt.Errorf("open pom: %w", err)
	}
	defer f.Close()

	return decode(f, path)
}

// charsetReader handles the non-UTF-8 encodings older POMs declare,
// most often ISO-8859-1.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported pom encoding %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (m *Model) trim() {
	for _, s := range []*string{&m.GroupID, &m.ArtifactID, &m.Version, &m.Packaging, &m.Name, &m.Description, &m.URL} {
		*s = strings.TrimSpace(*s)
	}
	if m.Parent != nil {
		p := m.Parent
		for _, s := range []*string{&p.GroupID, &p.ArtifactID, &p.Version, &p.RelativePath} {
			*s = strings.TrimSpace(*s)
		}
	}
	for i := range m.Modules {
		m.Modules[i] = strings.TrimSpace(m.Modules[i])
	}
	trimDependencies(m.Dependencies)
	trimDependencies(m.DependencyManagement)
	for i := range m.Licenses {
		m.Licenses[i].Name = strings.TrimSpace(m.Licenses[i].Name)
		m.Licenses[i].URL = strings.TrimSpace(m.Licenses[i].URL)
	}
	b := &m.Build
	for _, s := range []*string{&b.Directory, &b.OutputDirectory, &b.SourceDirectory, &b.FinalName} {
		*s = strings.TrimSpace(*s)
	}
}

func trimDependencies(deps []Dependency) {
	for i := range deps {
		d := &deps[i]
		for _, s := range []*string{&d.GroupID, &d.ArtifactID, &d.Version, &d.Type, &d.Classifier, &d.Scope, &d.Optional} {
			*s = strings.TrimSpace(*s)
		}
		for j := range d.Exclusions {
			d.Exclusions[j].GroupID = strings.TrimSpace(d.Exclusions[j].GroupID)
			d.Exclusions[j].ArtifactID = strings.TrimSpace(d.Exclusions[j].ArtifactID)
		}
	}
}
