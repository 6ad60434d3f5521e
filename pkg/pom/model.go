package pom

import (
	"encoding/xml"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// DefaultType is the artifact type of a dependency that declares none.
	DefaultType = "jar"

	// DefaultScope is the scope of a dependency that declares none.
	DefaultScope = "compile"

	// DefaultRelativePath locates the parent POM of a module on disk.
	DefaultRelativePath = "../pom.xml"
)

// Model is a parsed project descriptor. Models returned by [Merge] and
// [Interpolate] are fresh copies; callers may share parsed models freely
// as long as they do not mutate them.
type Model struct {
	Parent      *Parent `xml:"parent"`
	GroupID     string  `xml:"groupId"`
	ArtifactID  string  `xml:"artifactId"`
	Version     string  `xml:"version"`
	Packaging   string  `xml:"packaging"`
	Name        string  `xml:"name"`
	Description string  `xml:"description"`
	URL         string  `xml:"url"`

	Properties           Properties   `xml:"properties"`
	Modules              []string     `xml:"modules>module"`
	Dependencies         []Dependency `xml:"dependencies>dependency"`
	DependencyManagement []Dependency `xml:"dependencyManagement>dependencies>dependency"`
	Licenses             []License    `xml:"licenses>license"`
	Build                Build        `xml:"build"`
}

// Parent references the model a project inherits from.
type Parent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// Coord returns the parent's coordinate.
func (p *Parent) Coord() Coord {
	return Coord{GroupID: p.GroupID, ArtifactID: p.ArtifactID}
}

// POMPath returns the on-disk location of the parent POM relative to the
// directory of the child POM. A relativePath naming a directory refers to
// the pom.xml inside it.
func (p *Parent) POMPath(childDir string) string {
	rel := p.RelativePath
	if rel == "" {
		rel = DefaultRelativePath
	}
	path := filepath.Join(childDir, filepath.FromSlash(rel))
	if !strings.HasSuffix(path, ".xml") {
		path = filepath.Join(path, "pom.xml")
	}
	return path
}

// Dependency is a declared (or managed) dependency.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Coord returns the dependency's unversioned coordinate.
func (d Dependency) Coord() Coord {
	return Coord{GroupID: d.GroupID, ArtifactID: d.ArtifactID}
}

// EffectiveType returns the declared type or "jar".
func (d Dependency) EffectiveType() string {
	if d.Type == "" {
		return DefaultType
	}
	return d.Type
}

// EffectiveScope returns the declared scope or "compile".
func (d Dependency) EffectiveScope() string {
	if d.Scope == "" {
		return DefaultScope
	}
	return d.Scope
}

// IsOptional reports whether the dependency is marked optional.
func (d Dependency) IsOptional() bool {
	return strings.EqualFold(d.Optional, "true")
}

// IsImport reports whether a managed entry is a BOM import.
func (d Dependency) IsImport() bool {
	return d.Scope == "import" && d.EffectiveType() == "pom"
}

// managementKey identifies a dependency the way dependency management does.
func (d Dependency) managementKey() string {
	return d.GroupID + ":" + d.ArtifactID + ":" + d.EffectiveType() + ":" + d.Classifier
}

func (d Dependency) clone() Dependency {
	d.Exclusions = slices.Clone(d.Exclusions)
	return d
}

// Exclusion removes a coordinate from a dependency's transitive closure.
// Either id may be "*".
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Coord returns the excluded coordinate.
func (e Exclusion) Coord() Coord {
	return Coord{GroupID: e.GroupID, ArtifactID: e.ArtifactID}
}

// License is a license declared by a project.
type License struct {
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

// Build holds the build directories of a project.
type Build struct {
	Directory       string `xml:"directory"`
	OutputDirectory string `xml:"outputDirectory"`
	SourceDirectory string `xml:"sourceDirectory"`
	FinalName       string `xml:"finalName"`
}

// Properties holds <properties> entries keyed by element name.
type Properties map[string]string

// UnmarshalXML collects each child element of <properties> as a key.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if *p == nil {
		*p = make(Properties)
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}

// Coord returns the project's coordinate.
func (m *Model) Coord() Coord {
	return Coord{GroupID: m.GroupID, ArtifactID: m.ArtifactID}
}

// String returns "groupId:artifactId:version".
func (m *Model) String() string {
	return GAV(m.Coord(), m.Version)
}

// HasParent reports whether the model inherits from another model.
func (m *Model) HasParent() bool {
	return m.Parent != nil && m.Parent.ArtifactID != ""
}

// ManagedVersion returns the version dependency management assigns to dep,
// or "" if none. An entry matching type and classifier is preferred over
// one that only matches the coordinate; among equals the first wins.
func (m *Model) ManagedVersion(dep Dependency) string {
	key := dep.managementKey()
	fallback := ""
	for _, managed := range m.DependencyManagement {
		if managed.Version == "" || managed.Coord() != dep.Coord() {
			continue
		}
		if managed.managementKey() == key {
			return managed.Version
		}
		if fallback == "" {
			fallback = managed.Version
		}
	}
	return fallback
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	out := *m
	if m.Parent != nil {
		parent := *m.Parent
		out.Parent = &parent
	}
	out.Properties = maps.Clone(m.Properties)
	out.Modules = slices.Clone(m.Modules)
	out.Licenses = slices.Clone(m.Licenses)
	out.Dependencies = cloneDependencies(m.Dependencies)
	out.DependencyManagement = cloneDependencies(m.DependencyManagement)
	return &out
}

func cloneDependencies(deps []Dependency) []Dependency {
	if deps == nil {
		return nil
	}
	out := make([]Dependency, len(deps))
	for i, d := range deps {
		out[i] = d.clone()
	}
	return out
}
