package pom

import (
	"fmt"
	"strings"

	"github.com/ato/corvoid/pkg/errors"
)

// Coord is the unversioned identity of an artifact.
// It is comparable and safe to use as a map key.
type Coord struct {
	GroupID    string
	ArtifactID string
}

// String returns "groupId:artifactId".
func (c Coord) String() string {
	return c.GroupID + ":" + c.ArtifactID
}

// Validate checks both ids with [errors.ValidateCoordinate].
func (c Coord) Validate() error {
	return errors.ValidateCoordinate(c.GroupID, c.ArtifactID)
}

// ParseCoord parses "groupId:artifactId". Extra segments such as a version
// are rejected.
func ParseCoord(s string) (Coord, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Coord{}, errors.New(errors.ErrCodeInvalidCoordinate,
			"invalid coordinate %q (expected groupId:artifactId)", s)
	}
	c := Coord{GroupID: parts[0], ArtifactID: parts[1]}
	if err := c.Validate(); err != nil {
		return Coord{}, err
	}
	return c, nil
}

// GAV formats a versioned coordinate.
func GAV(c Coord, version string) string {
	return fmt.Sprintf("%s:%s", c, version)
}
