// Package cache keeps a local mirror of a Maven repository.
//
// The on-disk layout matches Maven's own ~/.m2/repository, so files are
// shared with other tools:
//
//	<root>/<group/as/path>/<artifactId>/<version>/<artifactId>-<version>[-<classifier>].<type>
//
// # Artifacts
//
// [Cache.Fetch] returns a present file without touching the network.
// Otherwise it downloads into a uniquely named part file next to the
// destination and renames it into place, so readers never see a partial
// file. Concurrent fetches of one destination share a single transfer; a
// failed transfer is retried by the next call.
//
// # Version listings
//
// [Cache.FetchMetadata] keeps a copy of each coordinate's maven-metadata.xml
// for [DefaultMetadataTTL], judged by file modification time. If the
// listing vanishes upstream the stale copy keeps being served.
// [Cache.LatestVersion] picks the greatest stable version from it.
package cache
