package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
)

const (
	// DefaultManifestCacheSize bounds how many parsed POMs are kept.
	DefaultManifestCacheSize = 4096

	// maxParentDepth guards against parent cycles.
	maxParentDepth = 64

	defaultOutputDir = "target/classes"
)

// Fetcher provides POM and artifact files. [*cache.Cache] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, c pom.Coord, version, classifier, typ string) (string, error)
	ArtifactPath(c pom.Coord, version, classifier, typ string) string
}

// Options configures a [Workspace].
type Options struct {
	Logger            *log.Logger
	ManifestCacheSize int
}

// module is a project of the local multi-module build.
type module struct {
	pom       string // path to pom.xml
	outputDir string // compiled classes, absolute
}

// Workspace resolves effective manifests, preferring modules of the local
// build over the repository cache. Modules must be registered with
// [Workspace.ScanModules] before resolution starts; after that a Workspace
// is safe for concurrent use.
type Workspace struct {
	cache  Fetcher
	logger *log.Logger

	mu      sync.RWMutex
	modules map[pom.Coord]module

	models *lru.Cache[string, *pom.Model]
}

// New creates a workspace on top of cache.
func New(cache Fetcher, opts Options) (*Workspace, error) {
	size := opts.ManifestCacheSize
	if size <= 0 {
		size = DefaultManifestCacheSize
	}
	models, err := lru.New[string, *pom.Model](size)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "manifest cache")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Workspace{
		cache:   cache,
		logger:  logger,
		modules: make(map[pom.Coord]module),
		models:  models,
	}, nil
}

// ScanModules registers the project in root and, recursively, every module
// it lists. A directory without a pom.xml ends that branch silently. A module
// that lists one of its own ancestors is an error.
func (w *Workspace) ScanModules(root string) error {
	return w.scan(root, make(map[string]bool), make(map[string]bool))
}

// scan walks the module tree below root. active holds the directories on the
// current path, seen every directory already registered.
func (w *Workspace) scan(root string, active, seen map[string]bool) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "module %s", root)
	}
	if active[root] {
		return errors.New(errors.ErrCodeInvalidManifest, "module cycle through %s", root)
	}
	if seen[root] {
		return nil
	}
	seen[root] = true

	path := filepath.Join(root, "pom.xml")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	m, err := w.read(path)
	if err != nil {
		return err
	}

	if m.GroupID != "" && m.ArtifactID != "" {
		w.mu.Lock()
		w.modules[m.Coord()] = module{pom: path, outputDir: outputDir(root, m)}
		w.mu.Unlock()
		w.logger.Debug("module", "coord", m.Coord(), "dir", root)
	}

	active[root] = true
	defer delete(active, root)
	for _, name := range m.Modules {
		if err := w.scan(filepath.Join(root, filepath.FromSlash(name)), active, seen); err != nil {
			return err
		}
	}
	return nil
}

// outputDir returns where a module's compiled classes go: its declared
// build.outputDirectory when that needs no external properties, else
// target/classes.
func outputDir(dir string, m *pom.Model) string {
	out := pom.Interpolate(m, nil).Build.OutputDirectory
	if out == "" || strings.Contains(out, "${") {
		out = defaultOutputDir
	}
	out = filepath.FromSlash(out)
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(dir, out)
}

// IsLocalModule reports whether c is part of the local build.
func (w *Workspace) IsLocalModule(c pom.Coord) bool {
	_, ok := w.LocalModulePOM(c)
	return ok
}

// LocalModulePOM returns the pom.xml of a local module.
func (w *Workspace) LocalModulePOM(c pom.Coord) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	mod, ok := w.modules[c]
	return mod.pom, ok
}

// Modules returns the registered module coordinates sorted by name.
func (w *Workspace) Modules() []pom.Coord {
	w.mu.RLock()
	coords := make([]pom.Coord, 0, len(w.modules))
	for c := range w.modules {
		coords = append(coords, c)
	}
	w.mu.RUnlock()

	slices.SortFunc(coords, func(a, b pom.Coord) int {
		return strings.Compare(a.String(), b.String())
	})
	return coords
}

// ArtifactPath returns the file (or classes directory, for local modules)
// that goes on the classpath for c.
func (w *Workspace) ArtifactPath(c pom.Coord, version, classifier, typ string) string {
	w.mu.RLock()
	mod, ok := w.modules[c]
	w.mu.RUnlock()
	if ok {
		return mod.outputDir
	}
	return w.cache.ArtifactPath(c, version, classifier, typ)
}

// Fetch makes an artifact available locally and returns its path. Local
// modules are built in place and never downloaded.
func (w *Workspace) Fetch(ctx context.Context, c pom.Coord, version, classifier, typ string) (string, error) {
	if w.IsLocalModule(c) {
		return w.ArtifactPath(c, version, classifier, typ), nil
	}
	return w.cache.Fetch(ctx, c, version, classifier, typ)
}

// read parses the POM at path, reusing an earlier parse of the same file.
// Returned models are shared and must not be modified.
func (w *Workspace) read(path string) (*pom.Model, error) {
	if m, ok := w.models.Get(path); ok {
		return m, nil
	}
	m, err := pom.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w.models.Add(path, m)
	return m, nil
}

func (w *Workspace) remote(ctx context.Context, c pom.Coord, version string) (*pom.Model, error) {
	path, err := w.cache.Fetch(ctx, c, version, "", "pom")
	if err != nil {
		return nil, err
	}
	return w.read(path)
}
