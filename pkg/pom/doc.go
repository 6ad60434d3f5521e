// Package pom reads Maven project descriptors.
//
// [Parse] decodes a pom.xml into a [Model] holding the parts dependency
// resolution needs: coordinates, parent reference, properties, modules,
// dependencies, dependency management, licenses and build directories.
//
// Building an effective model is left to the caller, which walks the parent
// chain and combines the results:
//
//	merged := pom.Merge(child, parent)
//	effective := pom.Interpolate(merged, func(key string) {
//	    logger.Warn("unresolved property", "key", key)
//	})
//
// Both functions return fresh models, so parsed models may be cached and
// shared between goroutines.
package pom
