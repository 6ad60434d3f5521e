package resolve

import (
	"context"
	"os"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
)

// Tree is the result of a resolution run.
type Tree struct {
	Root *Node

	nodes         []*Node
	versions      map[pom.Coord]string
	unconstrained []pom.Coord
	src           Source
	workers       int
}

// Nodes returns every node, root first, in breadth-first order.
func (t *Tree) Nodes() []*Node { return slices.Clone(t.nodes) }

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Version returns the version c was pinned to.
func (t *Tree) Version(c pom.Coord) (string, bool) {
	v, ok := t.versions[c]
	return v, ok
}

// Unconstrained returns the coordinates that were declared without a
// usable version and never pinned elsewhere, sorted.
func (t *Tree) Unconstrained() []pom.Coord { return slices.Clone(t.unconstrained) }

// Walk visits the tree depth first, parents before children. Returning
// false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var walk func(*Node)
	walk = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.Root)
}

// ClasspathFiles returns the artifact path of every non-root node in
// depth-first order, each coordinate once.
func (t *Tree) ClasspathFiles() []string {
	seen := make(map[pom.Coord]bool)
	var files []string
	t.Walk(func(n *Node) bool {
		if n.IsRoot() {
			return true
		}
		if seen[n.coord] {
			return false
		}
		seen[n.coord] = true
		files = append(files, n.artifact)
		return true
	})
	return files
}

// Classpath joins [Tree.ClasspathFiles] with the platform list separator.
func (t *Tree) Classpath() string {
	return strings.Join(t.ClasspathFiles(), string(os.PathListSeparator))
}

// FetchDependencies downloads the artifact of every node that is not the
// root or a workspace module. It returns the number of artifacts fetched
// or found in the cache.
func (t *Tree) FetchDependencies(ctx context.Context) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	count := 0
	for _, n := range t.nodes {
		if n.IsRoot() || t.src.IsLocalModule(n.coord) {
			continue
		}
		count++
		d := n.decl
		g.Go(func() error {
			if _, err := t.src.Fetch(ctx, n.coord, n.version, d.Classifier, d.EffectiveType()); err != nil {
				return errors.Wrap(codeOf(err), err, "fetch %s", n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

func codeOf(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodeNetwork
}
