package repository

import (
	"strings"

	"github.com/ato/corvoid/pkg/pom"
)

// MetadataFile is the name of the version listing kept next to an
// artifact's version directories.
const MetadataFile = "maven-metadata.xml"

// GroupPath turns a dotted groupId into a slash-separated path.
func GroupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// ArtifactPath returns the slash-separated path of an artifact file relative
// to a repository root:
//
//	<group>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<type>
//
// An empty type means "jar".
func ArtifactPath(c pom.Coord, version, classifier, typ string) string {
	if typ == "" {
		typ = "jar"
	}
	var b strings.Builder
	b.WriteString(GroupPath(c.GroupID))
	b.WriteByte('/')
	b.WriteString(c.ArtifactID)
	b.WriteByte('/')
	b.WriteString(version)
	b.WriteByte('/')
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(version)
	if classifier != "" {
		b.WriteByte('-')
		b.WriteString(classifier)
	}
	b.WriteByte('.')
	b.WriteString(typ)
	return b.String()
}

// MetadataPath returns the slash-separated path of an artifact's
// upstream version listing relative to a repository root.
func MetadataPath(c pom.Coord) string {
	return GroupPath(c.GroupID) + "/" + c.ArtifactID + "/" + MetadataFile
}
