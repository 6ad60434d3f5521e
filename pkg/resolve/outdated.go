package resolve

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/version"
)

// LatestFinder looks up the newest stable release of a coordinate.
// [*cache.Cache] implements it.
type LatestFinder interface {
	LatestVersion(ctx context.Context, c pom.Coord) (string, error)
}

// Update is a dependency with a newer stable release available.
type Update struct {
	Coord   pom.Coord
	Current string
	Latest  string
}

func (u Update) String() string {
	return fmt.Sprintf("%s %s -> %s", u.Coord, u.Current, u.Latest)
}

// Outdated checks the direct dependencies and managed entries of m against
// finder. Entries without a concrete version are skipped, as are BOM
// imports. A coordinate declared more than once is checked once, using its
// first declaration.
func Outdated(ctx context.Context, m *pom.Model, finder LatestFinder) ([]Update, error) {
	var candidates []Update
	seen := make(map[pom.Coord]bool)
	add := func(d pom.Dependency) {
		c := d.Coord()
		if seen[c] || !concrete(d.Version) {
			return
		}
		seen[c] = true
		candidates = append(candidates, Update{Coord: c, Current: d.Version})
	}
	for _, d := range m.Dependencies {
		add(d)
	}
	for _, d := range m.DependencyManagement {
		if !d.IsImport() {
			add(d)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultWorkers)
	for i := range candidates {
		u := &candidates[i]
		g.Go(func() error {
			latest, err := finder.LatestVersion(ctx, u.Coord)
			if err != nil {
				return errors.Wrap(codeOf(err), err, "latest version of %s", u.Coord)
			}
			u.Latest = latest
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var updates []Update
	for _, u := range candidates {
		if u.Latest != "" && version.Compare(u.Latest, u.Current) > 0 {
			updates = append(updates, u)
		}
	}
	slices.SortFunc(updates, func(a, b Update) int { return compareCoords(a.Coord, b.Coord) })
	return updates, nil
}

func concrete(v string) bool {
	return v != "" && !isRange(v) && !strings.Contains(v, "${")
}
