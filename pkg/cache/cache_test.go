package cache

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/repository"
)

var guava = pom.Coord{GroupID: "com.google.guava", ArtifactID: "guava"}

const guavaPath = "/com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre.jar"

const guavaMetadata = `<?xml version="1.0" encoding="UTF-8"?>
<metadata>
  <groupId>com.google.guava</groupId>
  <artifactId>guava</artifactId>
  <versioning>
    <latest>1.1.0-beta1</latest>
    <versions>
      <version>1.0.0</version>
      <version>1.0.1</version>
      <version>1.1.0-alpha1</version>
      <version>1.1.0-beta1</version>
    </versions>
  </versioning>
</metadata>
`

// repo is a fake remote repository that counts requests per path.
type repo struct {
	mu     sync.Mutex
	files  map[string]string
	status map[string]int
	hits   map[string]int
}

func newRepo() *repo {
	return &repo{files: map[string]string{}, status: map[string]int{}, hits: map[string]int{}}
}

func (r *repo) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.hits[req.URL.Path]++
	body, ok := r.files[req.URL.Path]
	status := r.status[req.URL.Path]
	r.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, req)
		return
	}
	fmt.Fprint(w, body)
}

func (r *repo) set(path, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[path] = body
	delete(r.status, path)
}

func (r *repo) fail(path string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[path] = status
}

func (r *repo) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[path]
}

func newTestCache(t *testing.T, r *repo, opts Options) *Cache {
	t.Helper()
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	client, err := repository.New(server.URL, repository.Options{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(t.TempDir(), client, opts)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func partFiles(t *testing.T, root string) []string {
	t.Helper()
	var parts []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && filepath.Ext(path) == ".part" {
			parts = append(parts, path)
		}
		return nil
	})
	return parts
}

func TestArtifactPath(t *testing.T) {
	c, err := New("/m2", nil, Options{Offline: true})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		classifier, typ string
		want            string
	}{
		{"", "", "/m2/com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre.jar"},
		{"", "pom", "/m2/com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre.pom"},
		{"sources", "jar", "/m2/com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre-sources.jar"},
	}
	for _, tt := range tests {
		got := c.ArtifactPath(guava, "32.1.3-jre", tt.classifier, tt.typ)
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("ArtifactPath(%q, %q) = %q, want %q", tt.classifier, tt.typ, got, tt.want)
		}
	}

	if got, want := c.MetadataPath(guava), filepath.FromSlash("/m2/com/google/guava/guava/maven-metadata-central.xml"); got != want {
		t.Errorf("MetadataPath() = %q, want %q", got, want)
	}
}

func TestNewRequiresRemote(t *testing.T) {
	if _, err := New(t.TempDir(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New(nil remote) error = %v, want INVALID_INPUT", err)
	}
}

func TestFetchDownloadsOnce(t *testing.T) {
	r := newRepo()
	r.set(guavaPath, "guava bytes")
	c := newTestCache(t, r, Options{})
	ctx := context.Background()

	first, err := c.Fetch(ctx, guava, "32.1.3-jre", "", "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	second, err := c.Fetch(ctx, guava, "32.1.3-jre", "", "jar")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if first != second || first != c.ArtifactPath(guava, "32.1.3-jre", "", "jar") {
		t.Errorf("paths = %q, %q", first, second)
	}
	data, err := os.ReadFile(first)
	if err != nil || string(data) != "guava bytes" {
		t.Errorf("content = %q, %v", data, err)
	}
	if n := r.count(guavaPath); n != 1 {
		t.Errorf("transfers = %d, want 1", n)
	}
	if parts := partFiles(t, c.Root()); len(parts) != 0 {
		t.Errorf("leftover part files: %v", parts)
	}
}

func TestFetchConcurrentCallsShareTransfer(t *testing.T) {
	r := newRepo()
	r.set(guavaPath, "guava bytes")
	c := newTestCache(t, r, Options{})

	const callers = 16
	var wg sync.WaitGroup
	paths := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = c.Fetch(context.Background(), guava, "32.1.3-jre", "", "jar")
		}()
	}
	wg.Wait()

	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Errorf("caller %d path = %q, want %q", i, paths[i], paths[0])
		}
	}
	if n := r.count(guavaPath); n != 1 {
		t.Errorf("transfers = %d, want 1", n)
	}
}

func TestFetchFailureLeavesNothingBehind(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.Code
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound},
		{"server error", http.StatusInternalServerError, errors.ErrCodeNetwork},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRepo()
			r.fail(guavaPath, tt.status)
			c := newTestCache(t, r, Options{})

			_, err := c.Fetch(context.Background(), guava, "32.1.3-jre", "", "jar")
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Fetch() error = %v, want %s", err, tt.wantCode)
			}
			if _, err := os.Stat(c.ArtifactPath(guava, "32.1.3-jre", "", "jar")); !os.IsNotExist(err) {
				t.Errorf("destination exists after failed fetch: %v", err)
			}
			if parts := partFiles(t, c.Root()); len(parts) != 0 {
				t.Errorf("leftover part files: %v", parts)
			}
		})
	}
}

func TestFetchRetriesAfterFailedTransfer(t *testing.T) {
	r := newRepo()
	r.fail(guavaPath, http.StatusBadGateway)
	c := newTestCache(t, r, Options{})
	ctx := context.Background()

	if _, err := c.Fetch(ctx, guava, "32.1.3-jre", "", "jar"); err == nil {
		t.Fatal("expected first Fetch to fail")
	}

	r.set(guavaPath, "guava bytes")
	if _, err := c.Fetch(ctx, guava, "32.1.3-jre", "", "jar"); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if n := r.count(guavaPath); n != 2 {
		t.Errorf("transfers = %d, want 2", n)
	}
}

func TestFetchOffline(t *testing.T) {
	r := newRepo()
	r.set(guavaPath, "guava bytes")
	c := newTestCache(t, r, Options{Offline: true})

	if _, err := c.Fetch(context.Background(), guava, "32.1.3-jre", "", "jar"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Fetch() error = %v, want NOT_FOUND", err)
	}
	if n := r.count(guavaPath); n != 0 {
		t.Errorf("offline cache contacted the remote %d times", n)
	}
}

func TestFetchRejectsUnsafeIDs(t *testing.T) {
	c := newTestCache(t, newRepo(), Options{})
	tests := []struct {
		coord   pom.Coord
		version string
	}{
		{pom.Coord{GroupID: "..", ArtifactID: "a"}, "1"},
		{pom.Coord{GroupID: "g", ArtifactID: "a/../b"}, "1"},
		{pom.Coord{GroupID: "g", ArtifactID: "a"}, "${revision}"},
	}
	for _, tt := range tests {
		if _, err := c.Fetch(context.Background(), tt.coord, tt.version, "", ""); !errors.Is(err, errors.ErrCodeInvalidCoordinate) {
			t.Errorf("Fetch(%v, %q) error = %v, want INVALID_COORDINATE", tt.coord, tt.version, err)
		}
	}
}

type downloadCounter struct {
	observability.NoopCacheHooks
	downloads atomic.Int32
	hits      atomic.Int32
}

func (d *downloadCounter) OnCacheHit(context.Context, string) { d.hits.Add(1) }
func (d *downloadCounter) OnDownload(context.Context, string, int64, time.Duration, error) {
	d.downloads.Add(1)
}

func TestFetchReportsHooks(t *testing.T) {
	hooks := &downloadCounter{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := newRepo()
	r.set(guavaPath, "guava bytes")
	c := newTestCache(t, r, Options{})

	for range 2 {
		if _, err := c.Fetch(context.Background(), guava, "32.1.3-jre", "", "jar"); err != nil {
			t.Fatal(err)
		}
	}
	if hooks.downloads.Load() != 1 || hooks.hits.Load() != 1 {
		t.Errorf("downloads = %d, hits = %d, want 1 and 1", hooks.downloads.Load(), hooks.hits.Load())
	}
}
