package pom

import (
	"strings"
)

const (
	maxInterpolationDepth = 32

	// maxInterpolatedLength bounds a single expanded value. Expressions
	// that would grow it further are left as written.
	maxInterpolatedLength = 1 << 14
)

// Interpolate returns a copy of m with ${...} expressions expanded in every
// string field. It does not modify m.
//
// Expressions resolve against basedir, the project.* and parent.* fields and
// the model's properties. Values are expanded recursively up to a fixed
// depth and length. Unknown expressions are left as written and reported to onMissing,
// which may be nil. An unterminated "${" is kept verbatim.
func Interpolate(m *Model, onMissing func(key string)) *Model {
	in := &interpolator{model: m, onMissing: onMissing, memo: make(map[memoKey]string)}
	out := m.Clone()

	for _, s := range []*string{&out.GroupID, &out.ArtifactID, &out.Version, &out.Packaging, &out.Name, &out.Description, &out.URL} {
		*s = in.expand(*s, 0)
	}
	if out.Parent != nil {
		p := out.Parent
		for _, s := range []*string{&p.GroupID, &p.ArtifactID, &p.Version, &p.RelativePath} {
			*s = in.expand(*s, 0)
		}
	}
	for k, v := range out.Properties {
		out.Properties[k] = in.expand(v, 0)
	}
	for i := range out.Modules {
		out.Modules[i] = in.expand(out.Modules[i], 0)
	}
	in.dependencies(out.Dependencies)
	in.dependencies(out.DependencyManagement)
	for i := range out.Licenses {
		out.Licenses[i].Name = in.expand(out.Licenses[i].Name, 0)
		out.Licenses[i].URL = in.expand(out.Licenses[i].URL, 0)
	}
	b := &out.Build
	for _, s := range []*string{&b.Directory, &b.OutputDirectory, &b.SourceDirectory, &b.FinalName} {
		*s = in.expand(*s, 0)
	}
	return out
}

type interpolator struct {
	model     *Model
	onMissing func(string)
	memo      map[memoKey]string
}

type memoKey struct {
	key   string
	depth int
}

func (in *interpolator) dependencies(deps []Dependency) {
	for i := range deps {
		d := &deps[i]
		for _, s := range []*string{&d.GroupID, &d.ArtifactID, &d.Version, &d.Type, &d.Classifier, &d.Scope, &d.Optional} {
			*s = in.expand(*s, 0)
		}
		for j := range d.Exclusions {
			d.Exclusions[j].GroupID = in.expand(d.Exclusions[j].GroupID, 0)
			d.Exclusions[j].ArtifactID = in.expand(d.Exclusions[j].ArtifactID, 0)
		}
	}
}

func (in *interpolator) expand(s string, depth int) string {
	if !strings.Contains(s, "${") {
		return s
	}

	var b strings.Builder
	pos := 0
	for {
		start := strings.Index(s[pos:], "${")
		if start < 0 {
			break
		}
		start += pos
		end := strings.IndexByte(s[start+2:], '}')
		if end < 0 {
			break
		}
		end += start + 2

		b.WriteString(s[pos:start])
		key := s[start+2 : end]
		value, ok := in.lookup(key)
		if !ok {
			if in.onMissing != nil {
				in.onMissing(key)
			}
			value = s[start : end+1]
		} else if depth < maxInterpolationDepth {
			value = in.resolved(key, value, depth+1)
		}
		if b.Len()+len(value) > maxInterpolatedLength {
			value = s[start : end+1]
		}
		b.WriteString(value)
		pos = end + 1
	}
	b.WriteString(s[pos:])
	return b.String()
}

// resolved expands the value of key once per depth.
func (in *interpolator) resolved(key, value string, depth int) string {
	k := memoKey{key: key, depth: depth}
	if v, ok := in.memo[k]; ok {
		return v
	}
	v := in.expand(value, depth)
	in.memo[k] = v
	return v
}

func (in *interpolator) lookup(key string) (string, bool) {
	m := in.model
	switch key {
	case "basedir", "project.basedir":
		return "./", true
	case "project.build.directory":
		if m.Build.Directory != "" {
			return m.Build.Directory, true
		}
		return "target", true
	}

	field, ok := strings.CutPrefix(key, "project.")
	if !ok {
		field, ok = strings.CutPrefix(key, "pom.")
	}
	if ok {
		switch field {
		case "groupId":
			return m.GroupID, true
		case "artifactId":
			return m.ArtifactID, true
		case "version":
			return m.Version, true
		case "packaging":
			return m.Packaging, true
		case "name":
			return m.Name, true
		}
		if p, isParent := strings.CutPrefix(field, "parent."); isParent {
			return in.parentField(p)
		}
	}
	if p, isParent := strings.CutPrefix(key, "parent."); isParent {
		return in.parentField(p)
	}

	v, ok := m.Properties[key]
	return v, ok
}

func (in *interpolator) parentField(field string) (string, bool) {
	p := in.model.Parent
	if p == nil {
		return "", false
	}
	switch field {
	case "groupId":
		return p.GroupID, true
	case "artifactId":
		return p.ArtifactID, true
	case "version":
		return p.Version, true
	}
	return "", false
}
