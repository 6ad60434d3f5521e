// Package workspace builds effective project models.
//
// A [Workspace] knows the modules of the local multi-module build and
// resolves everything else through the artifact cache. For a coordinate it
// reads the POM, walks the parent chain, interpolates properties and
// expands BOM imports, returning a model the resolver can use directly.
//
//	ws, _ := workspace.New(c, workspace.Options{Logger: logger})
//	root, err := ws.LoadProject(ctx, ".")
//
// Parsed POMs are kept in an LRU cache keyed by file path and are never
// modified; every derived model is a fresh copy.
package workspace
