package resolve

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
)

type fakeFinder struct {
	latest map[string]string

	mu      sync.Mutex
	queried []string
}

func (f *fakeFinder) LatestVersion(_ context.Context, c pom.Coord) (string, error) {
	f.mu.Lock()
	f.queried = append(f.queried, c.String())
	f.mu.Unlock()
	if c.ArtifactID == "broken" {
		return "", errors.New(errors.ErrCodeNetwork, "unreachable")
	}
	return f.latest[c.ArtifactID], nil
}

func TestOutdated(t *testing.T) {
	bom := dep("bom", "1.0")
	bom.Type, bom.Scope = "pom", "import"

	m := model("root", "1.0",
		dep("old", "1.0"),
		dep("current", "2.0"),
		dep("ranged", "[1.0,)"),
		dep("unversioned", ""),
		dep("unresolved", "${missing}"),
		dep("unknown", "1.0"),
	)
	m.DependencyManagement = []pom.Dependency{
		dep("managed", "1.0"),
		dep("old", "0.5"),
		bom,
	}

	finder := &fakeFinder{latest: map[string]string{
		"old":     "1.2",
		"current": "2.0",
		"managed": "1.0.1",
		"bom":     "9.0",
	}}

	updates, err := Outdated(context.Background(), m, finder)
	if err != nil {
		t.Fatalf("Outdated: %v", err)
	}

	want := []Update{
		{Coord: coord("managed"), Current: "1.0", Latest: "1.0.1"},
		{Coord: coord("old"), Current: "1.0", Latest: "1.2"},
	}
	if !slices.Equal(updates, want) {
		t.Errorf("Outdated() = %v, want %v", updates, want)
	}

	slices.Sort(finder.queried)
	wantQueried := []string{"g:current", "g:managed", "g:old", "g:unknown"}
	if !slices.Equal(finder.queried, wantQueried) {
		t.Errorf("queried = %v, want %v", finder.queried, wantQueried)
	}
}

func TestOutdatedFailure(t *testing.T) {
	m := model("root", "1.0", dep("broken", "1.0"))
	_, err := Outdated(context.Background(), m, &fakeFinder{})
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeNetwork)
	}
}

func TestUpdateString(t *testing.T) {
	u := Update{Coord: coord("a"), Current: "1.0", Latest: "1.1"}
	if got := u.String(); got != "g:a 1.0 -> 1.1" {
		t.Errorf("String() = %q", got)
	}
}
