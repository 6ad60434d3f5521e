// Package resolve builds the transitive dependency tree of a project.
//
// # Overview
//
// Resolution runs breadth first, one wave per depth. The coordinator scans
// the declarations of a wave in order and pins each new coordinate to a
// version with a set-if-absent: the first declaration reached wins and
// later ones are dropped, which approximates Maven's nearest-wins rule
// without conflict errors. Manifests of the new nodes are fetched on a
// bounded pool, and the next wave starts once all of them are in.
//
// Version precedence for a declaration is the root's dependency
// management, then the declared version, then the declaring manifest's
// dependency management. Version ranges are not supported; such
// dependencies are reported as unconstrained.
//
// Only compile-scope, non-optional dependencies are followed. Exclusions
// accumulate down the tree and accept "*" for either id.
//
// # Usage
//
//	r := resolve.New(ws, resolve.Options{Logger: logger})
//	tree, err := r.Resolve(ctx, project)
//	if err != nil {
//	    return err
//	}
//	if _, err := tree.FetchDependencies(ctx); err != nil {
//	    return err
//	}
//	fmt.Println(tree.Classpath())
//
// A [Resolver] is single use. Building the tree never downloads binary
// artifacts; [Tree.FetchDependencies] does that as a separate pass.
package resolve
