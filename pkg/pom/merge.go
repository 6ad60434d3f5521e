package pom

import "maps"

// Merge returns child with parent's inheritable content applied. Neither
// argument is modified.
//
// Scalars declared by the child win. Properties are merged with the child
// taking precedence. Dependencies are the child's followed by any inherited
// dependency the child does not redeclare. Dependency management keeps the
// child's entries first so that [Model.ManagedVersion] prefers them.
// Modules, packaging and the artifactId are never inherited.
func Merge(child, parent *Model) *Model {
	out := child.Clone()
	if parent == nil {
		return out
	}

	inherit(&out.GroupID, parent.GroupID)
	inherit(&out.Version, parent.Version)
	inherit(&out.Description, parent.Description)
	inherit(&out.URL, parent.URL)

	inherit(&out.Build.Directory, parent.Build.Directory)
	inherit(&out.Build.OutputDirectory, parent.Build.OutputDirectory)
	inherit(&out.Build.SourceDirectory, parent.Build.SourceDirectory)
	inherit(&out.Build.FinalName, parent.Build.FinalName)

	if len(parent.Properties) > 0 {
		props := maps.Clone(parent.Properties)
		maps.Copy(props, out.Properties)
		out.Properties = props
	}

	if len(out.Licenses) == 0 && len(parent.Licenses) > 0 {
		out.Licenses = append([]License(nil), parent.Licenses...)
	}

	declared := make(map[string]bool, len(out.Dependencies))
	for _, d := range out.Dependencies {
		declared[d.managementKey()] = true
	}
	for _, d := range parent.Dependencies {
		if !declared[d.managementKey()] {
			out.Dependencies = append(out.Dependencies, d.clone())
		}
	}

	out.DependencyManagement = append(out.DependencyManagement, cloneDependencies(parent.DependencyManagement)...)
	return out
}

func inherit(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}
