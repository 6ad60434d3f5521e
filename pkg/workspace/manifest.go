package workspace

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
)

// ResolveManifest returns the effective model of c at version: its own POM
// merged with every ancestor, interpolated, with BOM imports expanded.
//
// Local modules are read from disk and find their parent through
// relativePath when it points at the expected project; everything else
// comes from the cache.
func (w *Workspace) ResolveManifest(ctx context.Context, c pom.Coord, version string) (*pom.Model, error) {
	return w.resolve(ctx, c, version, nil)
}

func (w *Workspace) resolve(ctx context.Context, c pom.Coord, version string, importing []string) (*pom.Model, error) {
	current, dir, err := w.own(ctx, c, version)
	if err != nil {
		return nil, err
	}

	out := current
	for depth := 0; current.HasParent(); depth++ {
		if depth >= maxParentDepth {
			return nil, errors.New(errors.ErrCodeInvalidManifest,
				"parent chain of %s is longer than %d", pom.GAV(c, version), maxParentDepth)
		}
		current, dir, err = w.parent(ctx, current, dir)
		if err != nil {
			return nil, err
		}
		out = pom.Merge(out, current)
	}

	out = pom.Interpolate(out, func(key string) {
		w.logger.Debug("unresolved property", "coord", c, "key", key)
	})
	return w.resolveImports(ctx, out, importing)
}

// own loads the POM of c itself. dir is the directory holding it when it
// is a local module, and "" otherwise.
func (w *Workspace) own(ctx context.Context, c pom.Coord, version string) (*pom.Model, string, error) {
	if path, ok := w.LocalModulePOM(c); ok {
		m, err := w.read(path)
		return m, filepath.Dir(path), err
	}
	m, err := w.remote(ctx, c, version)
	return m, "", err
}

// parent loads the parent of child. A POM on disk is only used when it
// declares the coordinate the child asks for.
func (w *Workspace) parent(ctx context.Context, child *pom.Model, dir string) (*pom.Model, string, error) {
	ref := child.Parent
	if dir != "" {
		path := ref.POMPath(dir)
		if _, err := os.Stat(path); err == nil {
			m, err := w.read(path)
			if err != nil {
				return nil, "", err
			}
			if m.Coord() == ref.Coord() {
				return m, filepath.Dir(path), nil
			}
			w.logger.Debug("relativePath points elsewhere", "path", path, "want", ref.Coord(), "got", m.Coord())
		}
	}
	m, err := w.remote(ctx, ref.Coord(), ref.Version)
	if err != nil {
		return nil, "", wrap(err, "parent of %s", child)
	}
	return m, "", nil
}

// ResolveImports returns m with every import entry of its dependency
// management replaced, in place, by the managed dependencies of the
// imported BOM. m is not modified.
func (w *Workspace) ResolveImports(ctx context.Context, m *pom.Model) (*pom.Model, error) {
	return w.resolveImports(ctx, m, nil)
}

func (w *Workspace) resolveImports(ctx context.Context, m *pom.Model, importing []string) (*pom.Model, error) {
	if !slices.ContainsFunc(m.DependencyManagement, pom.Dependency.IsImport) {
		return m, nil
	}

	managed := make([]pom.Dependency, 0, len(m.DependencyManagement))
	for _, d := range m.DependencyManagement {
		if !d.IsImport() {
			managed = append(managed, d)
			continue
		}

		gav := pom.GAV(d.Coord(), d.Version)
		if slices.Contains(importing, gav) {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "import cycle through %s", gav)
		}
		bom, err := w.resolve(ctx, d.Coord(), d.Version, append(slices.Clip(importing), gav))
		if err != nil {
			return nil, wrap(err, "import %s", gav)
		}
		managed = append(managed, bom.DependencyManagement...)
	}

	out := m.Clone()
	out.DependencyManagement = managed
	return out, nil
}

// LoadProject resolves the project in dir as the root of a build. The
// module tree is scanned from the top-most local ancestor that declares
// modules, so sibling modules resolve from disk.
func (w *Workspace) LoadProject(ctx context.Context, dir string) (*pom.Model, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	raw, err := w.read(filepath.Join(dir, "pom.xml"))
	if err != nil {
		return nil, err
	}

	top := dir
	for cur, curDir, depth := raw, dir, 0; cur.HasParent() && depth < maxParentDepth; depth++ {
		path := cur.Parent.POMPath(curDir)
		parent, err := w.read(path)
		if err != nil || parent.Coord() != cur.Parent.Coord() {
			break
		}
		cur, curDir = parent, filepath.Dir(path)
		if len(parent.Modules) > 0 {
			top = curDir
		}
	}

	if err := w.ScanModules(top); err != nil {
		return nil, err
	}
	if !w.IsLocalModule(raw.Coord()) {
		if err := w.ScanModules(dir); err != nil {
			return nil, err
		}
	}
	return w.ResolveManifest(ctx, raw.Coord(), raw.Version)
}

// wrap adds context to err while keeping its code. Cancellation passes
// through untouched.
func wrap(err error, format string, args ...any) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInvalidManifest
	}
	return errors.Wrap(code, err, format, args...)
}
