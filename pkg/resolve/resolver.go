package resolve

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
)

// DefaultWorkers bounds concurrent manifest and artifact fetches.
const DefaultWorkers = 8

// Source supplies effective manifests and artifact files.
// [*workspace.Workspace] implements it.
type Source interface {
	ResolveManifest(ctx context.Context, c pom.Coord, version string) (*pom.Model, error)
	ResolveImports(ctx context.Context, m *pom.Model) (*pom.Model, error)
	ArtifactPath(c pom.Coord, version, classifier, typ string) string
	IsLocalModule(c pom.Coord) bool
	Fetch(ctx context.Context, c pom.Coord, version, classifier, typ string) (string, error)
}

// Options configures a [Resolver].
type Options struct {
	Workers int // defaults to DefaultWorkers
	Logger  *log.Logger
}

// Resolver builds one dependency tree. Version pins and the unconstrained
// set live for the whole run, so a Resolver cannot be reused.
type Resolver struct {
	src     Source
	workers int
	logger  *log.Logger

	used          atomic.Bool
	versions      sync.Map // pom.Coord -> string
	unconstrained sync.Map // pom.Coord -> struct{}
}

// New creates a resolver reading manifests from src.
func New(src Source, opts Options) *Resolver {
	r := &Resolver{src: src, workers: opts.Workers, logger: opts.Logger}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return r
}

// Resolve builds the dependency tree of root breadth first.
//
// Each wave scans the declarations of the previous wave's nodes in order.
// A compile-scope, non-optional dependency that is not excluded takes its
// version from the root's dependency management, then its own declaration,
// then its parent's dependency management. The first declaration of a
// coordinate to be pinned wins; later ones are dropped. Dependencies
// without a concrete version are reported by [Tree.Unconstrained].
//
// Manifests of a wave are fetched concurrently and the next wave starts
// only once all of them are resolved. Any failure aborts the run.
func (r *Resolver) Resolve(ctx context.Context, root *pom.Model) (*Tree, error) {
	if !r.used.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrCodeInternal, "resolver already used")
	}

	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, root.String())
	start := time.Now()

	tree, err := r.resolve(ctx, root)

	nodes := 0
	if tree != nil {
		nodes = tree.Len()
	}
	hooks.OnResolveComplete(ctx, root.String(), nodes, time.Since(start), err)
	return tree, err
}

func (r *Resolver) resolve(ctx context.Context, project *pom.Model) (*Tree, error) {
	root, err := r.src.ResolveImports(ctx, project)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolve, err, "resolve imports of %s", project)
	}

	rootNode := &Node{coord: root.Coord(), version: root.Version, model: root}
	r.versions.Store(rootNode.coord, rootNode.version)

	all := []*Node{rootNode}
	wave := all
	for depth := 0; len(wave) > 0; depth++ {
		next, err := r.expand(ctx, root, wave)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("wave", "depth", depth, "nodes", len(wave), "fetched", len(next))
		observability.Resolve().OnWave(ctx, depth, len(wave), len(next))
		all = append(all, next...)
		wave = next
	}

	return r.tree(rootNode, all), nil
}

// expand scans the declarations of every node in wave, pins new
// coordinates and resolves their manifests. Children are attached once all
// of them resolved.
func (r *Resolver) expand(ctx context.Context, root *pom.Model, wave []*Node) ([]*Node, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	children := make([][]*Node, len(wave))
	for i, parent := range wave {
		for _, d := range parent.model.Dependencies {
			child := r.accept(root, parent, d)
			if child == nil {
				continue
			}
			children[i] = append(children[i], child)
			g.Go(func() error {
				m, err := r.src.ResolveManifest(gctx, child.coord, child.version)
				if err != nil {
					return errors.Wrap(errors.ErrCodeResolve, err, "resolve %s", pom.GAV(child.coord, child.version))
				}
				child.model = m
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var next []*Node
	for i, parent := range wave {
		parent.children = children[i]
		next = append(next, children[i]...)
	}
	return next, nil
}

// accept decides whether declaration d of parent becomes a new node.
func (r *Resolver) accept(root *pom.Model, parent *Node, d pom.Dependency) *Node {
	if d.EffectiveScope() != pom.DefaultScope || d.IsOptional() {
		return nil
	}
	c := d.Coord()
	if parent.excludes(c) {
		return nil
	}

	v := root.ManagedVersion(d)
	if v == "" {
		v = d.Version
	}
	if v == "" {
		v = parent.model.ManagedVersion(d)
	}

	if v == "" || isRange(v) {
		if _, pinned := r.versions.Load(c); !pinned {
			if _, seen := r.unconstrained.LoadOrStore(c, struct{}{}); !seen {
				r.logger.Debug("unconstrained", "coord", c, "version", v, "from", pom.GAV(parent.coord, parent.version))
			}
		}
		return nil
	}

	if _, pinned := r.versions.LoadOrStore(c, v); pinned {
		return nil
	}
	r.unconstrained.Delete(c)

	decl := d
	return &Node{
		coord:      c,
		version:    v,
		decl:       &decl,
		exclusions: parent.inherit(d.Exclusions),
		depth:      parent.depth + 1,
		artifact:   r.src.ArtifactPath(c, v, d.Classifier, d.EffectiveType()),
	}
}

func isRange(v string) bool {
	return strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(")
}

func (r *Resolver) tree(root *Node, nodes []*Node) *Tree {
	t := &Tree{
		Root:     root,
		nodes:    nodes,
		versions: make(map[pom.Coord]string),
		src:      r.src,
		workers:  r.workers,
	}
	r.versions.Range(func(k, v any) bool {
		t.versions[k.(pom.Coord)] = v.(string)
		return true
	})
	r.unconstrained.Range(func(k, _ any) bool {
		t.unconstrained = append(t.unconstrained, k.(pom.Coord))
		return true
	})
	slices.SortFunc(t.unconstrained, compareCoords)
	return t
}

func compareCoords(a, b pom.Coord) int {
	return strings.Compare(a.String(), b.String())
}
