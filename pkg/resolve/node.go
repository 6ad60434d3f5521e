package resolve

import (
	"slices"

	"github.com/ato/corvoid/pkg/pom"
)

// Node is a resolved dependency. Nodes are read-only once [Resolver.Resolve]
// returns.
type Node struct {
	coord      pom.Coord
	version    string
	model      *pom.Model
	decl       *pom.Dependency
	exclusions []pom.Coord
	depth      int
	children   []*Node
	artifact   string
}

// Coord returns the node's coordinate.
func (n *Node) Coord() pom.Coord { return n.coord }

// Version returns the pinned version.
func (n *Node) Version() string { return n.version }

// Model returns the effective manifest.
func (n *Node) Model() *pom.Model { return n.model }

// Declaration returns the dependency that introduced the node, or nil for
// the root.
func (n *Node) Declaration() *pom.Dependency { return n.decl }

// Depth is 0 for the root.
func (n *Node) Depth() int { return n.depth }

// Children returns the nodes this node introduced, in declaration order.
// The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Exclusions returns every coordinate excluded below this node, including
// those inherited from its ancestors.
func (n *Node) Exclusions() []pom.Coord { return slices.Clone(n.exclusions) }

// ArtifactPath returns the classpath entry of the node.
func (n *Node) ArtifactPath() string { return n.artifact }

// IsRoot reports whether n is the project being resolved.
func (n *Node) IsRoot() bool { return n.decl == nil }

// String returns "groupId:artifactId:version".
func (n *Node) String() string { return pom.GAV(n.coord, n.version) }

func (n *Node) excludes(c pom.Coord) bool {
	for _, e := range n.exclusions {
		if (e.GroupID == "*" || e.GroupID == c.GroupID) && (e.ArtifactID == "*" || e.ArtifactID == c.ArtifactID) {
			return true
		}
	}
	return false
}

// inherit returns n's exclusions extended with extra.
func (n *Node) inherit(extra []pom.Exclusion) []pom.Coord {
	if len(extra) == 0 {
		return n.exclusions
	}
	out := slices.Clip(slices.Clone(n.exclusions))
	for _, e := range extra {
		out = append(out, e.Coord())
	}
	return out
}
