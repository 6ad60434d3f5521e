package repository

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	cerrors "github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
)

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name          string
		coord         pom.Coord
		ver, cls, typ string
		want          string
	}{
		{"default type", pom.Coord{GroupID: "com.google.guava", ArtifactID: "guava"}, "32.1.3-jre", "", "", "com/google/guava/guava/32.1.3-jre/guava-32.1.3-jre.jar"},
		{"pom", pom.Coord{GroupID: "junit", ArtifactID: "junit"}, "4.13.2", "", "pom", "junit/junit/4.13.2/junit-4.13.2.pom"},
		{"classifier", pom.Coord{GroupID: "io.netty", ArtifactID: "netty-transport-native-epoll"}, "4.1.100.Final", "linux-x86_64", "jar",
			"io/netty/netty-transport-native-epoll/4.1.100.Final/netty-transport-native-epoll-4.1.100.Final-linux-x86_64.jar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArtifactPath(tt.coord, tt.ver, tt.cls, tt.typ); got != tt.want {
				t.Errorf("ArtifactPath() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := MetadataPath(pom.Coord{GroupID: "org.slf4j", ArtifactID: "slf4j-api"}); got != "org/slf4j/slf4j-api/maven-metadata.xml" {
		t.Errorf("MetadataPath() = %q", got)
	}
}

func TestNew(t *testing.T) {
	c, err := New("", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.BaseURL() != DefaultURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultURL)
	}

	c, err = New("https://repo.example.com/maven2/", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.MetadataURL(pom.Coord{GroupID: "g", ArtifactID: "a"}); got != "https://repo.example.com/maven2/g/a/maven-metadata.xml" {
		t.Errorf("MetadataURL() = %q", got)
	}

	if _, err := New("ftp://repo.example.com", Options{}); !cerrors.Is(err, cerrors.ErrCodeInvalidInput) {
		t.Errorf("New(ftp) error = %v, want INVALID_INPUT", err)
	}
}

func TestDownload(t *testing.T) {
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/g/a/1/a-1.jar":
			w.Write([]byte("jar bytes"))
		case "/mirror":
			w.WriteHeader(http.StatusNonAuthoritativeInfo)
			w.Write([]byte("mirrored"))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c, err := New(server.URL, Options{UserAgent: "corvoid-test"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var buf bytes.Buffer
	n, err := c.Download(ctx, c.ArtifactURL(pom.Coord{GroupID: "g", ArtifactID: "a"}, "1", "", ""), &buf)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != 9 || buf.String() != "jar bytes" {
		t.Errorf("Download() = %d %q", n, buf.String())
	}
	if agent.Load() != "corvoid-test" {
		t.Errorf("User-Agent = %v", agent.Load())
	}

	buf.Reset()
	if _, err := c.Download(ctx, server.URL+"/mirror", &buf); err != nil || buf.String() != "mirrored" {
		t.Errorf("203 response: Download() = %q, %v", buf.String(), err)
	}

	_, err = c.Download(ctx, server.URL+"/missing", &buf)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: error = %v, want ErrNotFound", err)
	}
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusNotFound {
		t.Errorf("missing: error = %v, want *StatusError with 404", err)
	}

	_, err = c.Download(ctx, server.URL+"/forbidden", &buf)
	if !errors.Is(err, ErrNetwork) || errors.Is(err, ErrNotFound) {
		t.Errorf("forbidden: error = %v, want ErrNetwork", err)
	}
}

func TestDownloadRetries(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failures  int32
		wantCalls int32
		wantErr   bool
	}{
		{"no retry by default", 0, 1, 1, true},
		{"recovers on second attempt", 3, 1, 2, false},
		{"gives up", 2, 5, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= tt.failures {
					w.WriteHeader(http.StatusBadGateway)
					return
				}
				w.Write([]byte("ok"))
			}))
			defer server.Close()

			c, err := New(server.URL, Options{Attempts: tt.attempts, RetryDelay: time.Millisecond})
			if err != nil {
				t.Fatal(err)
			}

			_, err = c.Fetch(context.Background(), server.URL+"/x")
			if (err != nil) != tt.wantErr {
				t.Errorf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNetwork) {
				t.Errorf("Fetch() error = %v, want ErrNetwork", err)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestDownloadNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	c, _ := New(server.URL, Options{Attempts: 3, RetryDelay: time.Millisecond})
	if _, err := c.Fetch(context.Background(), server.URL+"/x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() error = %v, want ErrNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1", calls.Load())
	}
}

func TestDownloadCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := New(server.URL, Options{})
	if _, err := c.Fetch(ctx, server.URL+"/x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}
