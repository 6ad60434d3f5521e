package cache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/repository"
)

// DefaultMetadataTTL is how long a cached version listing stays fresh.
const DefaultMetadataTTL = 24 * time.Hour

// Downloader is the remote side of the cache. [*repository.Client]
// implements it.
type Downloader interface {
	ArtifactURL(c pom.Coord, version, classifier, typ string) string
	MetadataURL(c pom.Coord) string
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Options configures a [Cache].
type Options struct {
	Logger      *log.Logger
	MetadataTTL time.Duration    // defaults to DefaultMetadataTTL
	Offline     bool             // fail cache misses instead of downloading
	Now         func() time.Time // clock for metadata freshness, defaults to time.Now
}

// Cache is a local mirror of a remote repository laid out like ~/.m2.
// Artifacts are immutable once present; version listings expire after
// the metadata TTL. A Cache is safe for concurrent use.
type Cache struct {
	root    string
	remote  Downloader
	logger  *log.Logger
	ttl     time.Duration
	offline bool
	now     func() time.Time

	inflight singleflight.Group
}

// DefaultRoot returns ~/.m2/repository.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

// New creates a cache rooted at root, falling back to [DefaultRoot] when
// root is empty. remote may be nil only in offline mode.
func New(root string, remote Downloader, opts Options) (*Cache, error) {
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "locate local repository")
		}
	}
	if remote == nil && !opts.Offline {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cache needs a remote repository unless offline")
	}

	c := &Cache{
		root:    root,
		remote:  remote,
		logger:  opts.Logger,
		ttl:     opts.MetadataTTL,
		offline: opts.Offline,
		now:     opts.Now,
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.ttl <= 0 {
		c.ttl = DefaultMetadataTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Root returns the directory the cache mirrors the repository into.
func (c *Cache) Root() string { return c.root }

// ArtifactPath returns where an artifact lives in the cache. It does not
// touch the filesystem. An empty type means "jar".
func (c *Cache) ArtifactPath(coord pom.Coord, version, classifier, typ string) string {
	rel := repository.ArtifactPath(coord, version, classifier, typ)
	return filepath.Join(c.root, filepath.FromSlash(rel))
}

// Fetch returns the local path of an artifact, downloading it first if
// needed. A present file is returned without any network activity.
// Concurrent calls for the same file share one transfer.
func (c *Cache) Fetch(ctx context.Context, coord pom.Coord, version, classifier, typ string) (string, error) {
	if err := errors.ValidateArtifact(coord.GroupID, coord.ArtifactID, version, classifier, typ); err != nil {
		return "", err
	}
	if typ == "" {
		typ = pom.DefaultType
	}

	dest := c.ArtifactPath(coord, version, classifier, typ)
	if exists(dest) {
		observability.Cache().OnCacheHit(ctx, typ)
		return dest, nil
	}
	observability.Cache().OnCacheMiss(ctx, typ)

	if c.offline {
		return "", errors.New(errors.ErrCodeNotFound, "%s is not cached (offline)", artifactName(coord, version, classifier, typ))
	}

	url := c.remote.ArtifactURL(coord, version, classifier, typ)
	if err := c.download(ctx, dest, url, exists); err != nil {
		return "", transportError(err, "fetch %s", artifactName(coord, version, classifier, typ))
	}
	return dest, nil
}

// download transfers url to dest unless done reports the work already
// finished by an earlier flight. Callers sharing dest share the result.
func (c *Cache) download(ctx context.Context, dest, url string, done func(string) bool) error {
	_, err, _ := c.inflight.Do(dest, func() (any, error) {
		if done(dest) {
			return nil, nil
		}
		return nil, c.transfer(ctx, dest, url)
	})
	return err
}

// transfer streams url into a uniquely named part file next to dest and
// renames it into place. The part file never outlives the call.
func (c *Cache) transfer(ctx context.Context, dest, url string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	tmp := dest + "." + uuid.NewString() + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	c.logger.Info("fetching", "url", url)
	start := time.Now()
	n, err := c.remote.Download(ctx, url, f)
	observability.Cache().OnDownload(ctx, url, n, time.Since(start), err)

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func artifactName(coord pom.Coord, version, classifier, typ string) string {
	name := pom.GAV(coord, version)
	if classifier != "" {
		name += ":" + classifier
	}
	return name + "@" + typ
}

// transportError maps repository sentinels onto error codes.
func transportError(err error, format string, args ...any) error {
	code := errors.ErrCodeNetwork
	switch {
	case isNotFound(err):
		code = errors.ErrCodeNotFound
	case isContextErr(err):
		return err
	}
	return errors.Wrap(code, err, format, args...)
}
