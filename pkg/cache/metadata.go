package cache

import (
	"context"
	"encoding/xml"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/repository"
	"github.com/ato/corvoid/pkg/version"
)

// MetadataFile is the name version listings are cached under. It differs
// from the upstream name so a cached listing is never mistaken for one
// Maven itself downloaded.
const MetadataFile = "maven-metadata-central.xml"

type metadata struct {
	Versioning struct {
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// MetadataPath returns where the version listing of coord is cached.
func (c *Cache) MetadataPath(coord pom.Coord) string {
	return filepath.Join(c.root, filepath.FromSlash(repository.GroupPath(coord.GroupID)), coord.ArtifactID, MetadataFile)
}

// FetchMetadata returns the path of a fresh copy of coord's version
// listing. A cached copy younger than the metadata TTL is used as is.
// When the upstream listing has disappeared (404) an existing copy is kept
// however old it is; every other failure is returned.
func (c *Cache) FetchMetadata(ctx context.Context, coord pom.Coord) (string, error) {
	if err := coord.Validate(); err != nil {
		return "", err
	}

	path := c.MetadataPath(coord)
	if c.fresh(path) {
		c.logger.Debug("metadata fresh", "coord", coord)
		observability.Cache().OnCacheHit(ctx, "metadata")
		return path, nil
	}
	observability.Cache().OnCacheMiss(ctx, "metadata")

	if c.offline {
		if exists(path) {
			return path, nil
		}
		return "", errors.New(errors.ErrCodeNotFound, "metadata for %s is not cached (offline)", coord)
	}

	err := c.download(ctx, path, c.remote.MetadataURL(coord), c.fresh)
	if err == nil {
		return path, nil
	}
	if isNotFound(err) && exists(path) {
		c.logger.Debug("metadata stale, keeping cached copy", "coord", coord)
		return path, nil
	}
	return "", transportError(err, "fetch metadata for %s", coord)
}

func (c *Cache) fresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return c.now().Sub(info.ModTime()) < c.ttl
}

// Versions returns every version listed in coord's metadata, in document
// order. A coordinate with no upstream listing has no versions.
func (c *Cache) Versions(ctx context.Context, coord pom.Coord) ([]string, error) {
	path, err := c.FetchMetadata(ctx, coord)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var md metadata
	if err := xml.NewDecoder(f).Decode(&md); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	versions := make([]string, 0, len(md.Versioning.Versions))
	for _, v := range md.Versioning.Versions {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// LatestVersion returns the greatest stable version of coord, or "" when
// none is stable or the coordinate has no upstream listing.
func (c *Cache) LatestVersion(ctx context.Context, coord pom.Coord) (string, error) {
	versions, err := c.Versions(ctx, coord)
	if err != nil {
		return "", err
	}
	return version.LatestStable(versions), nil
}

// ClearMetadata deletes every cached version listing below the root and
// returns how many were removed. Artifacts are left alone.
func (c *Cache) ClearMetadata() (int, error) {
	removed := 0
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == c.root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || d.Name() != MetadataFile {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}
