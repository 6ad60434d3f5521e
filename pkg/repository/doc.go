// Package repository is an HTTP client for Maven-layout artifact
// repositories such as Maven Central.
//
// Files live at fixed paths below the repository root (see [ArtifactPath]
// and [MetadataPath]), so the client only needs to build URLs and stream
// bodies:
//
//	c, err := repository.New(repository.DefaultURL, repository.Options{})
//	n, err := c.Download(ctx, c.ArtifactURL(pom.Coord{GroupID: "com.google.guava", ArtifactID: "guava"}, "32.1.3-jre", "", "pom"), f)
//
// Download errors wrap [ErrNotFound] or [ErrNetwork]; use errors.Is to tell
// them apart. A [*StatusError] carries the HTTP status code.
package repository
