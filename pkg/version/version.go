package version

import (
	"cmp"
	"math/big"
	"slices"
	"strings"
)

// qualifiers lists the well-known qualifiers in ascending order. Anything
// not listed ranks above all of them and compares lexically.
var qualifiers = []string{"alpha", "beta", "milestone", "rc", "snapshot", "", "sp"}

const (
	releaseRank = 5
	unknownRank = 7
)

type kind uint8

// Kind order doubles as the cross-kind ordering: qualifiers sort below
// nested lists, which sort below numbers.
const (
	kindQualifier kind = iota
	kindList
	kindNumber
)

type item struct {
	kind  kind
	num   *big.Int // kindNumber, or the number of a combination
	qual  string   // kindQualifier
	combo bool     // qualifier immediately followed by a number, e.g. rc1
	sub   *seq     // kindList
}

type seq struct {
	items []item
}

func (s *seq) add(it item) { s.items = append(s.items, it) }

// nest appends a new sub-sequence to s and returns it.
func (s *seq) nest() *seq {
	sub := &seq{}
	s.add(item{kind: kindList, sub: sub})
	return sub
}

// Key is a parsed version string ordered by Maven rules.
// The zero value is the empty version.
type Key struct {
	raw   string
	parts *seq
}

// Parse tokenizes s into a Key. Parsing never fails: every string is a
// version, possibly one made entirely of qualifiers.
func Parse(s string) Key {
	lower := strings.ToLower(s)
	root := &seq{}
	current := root

	for i := 0; i < len(lower); {
		c := lower[i]
		if isSeparator(c) {
			if i == 0 || isSeparator(lower[i-1]) {
				current.add(number(new(big.Int)))
			}
			if c == '-' && len(current.items) > 0 {
				current = current.nest()
			}
			i++
			continue
		}

		start := i
		digits := isDigit(c)
		for i < len(lower) && isDigit(lower[i]) == digits && !isSeparator(lower[i]) {
			i++
		}
		if digits {
			current.add(number(parseNumber(lower[start:i])))
			continue
		}
		i = parseQualifier(lower, start, i, current)
	}

	root.normalize()
	return Key{raw: s, parts: root}
}

// parseQualifier records the letter run s[start:end] in current and returns
// the index parsing resumes at. A qualifier directly followed by digits, or
// by a hyphen and digits, becomes a combination so that "rc-1" reads as "rc1".
func parseQualifier(s string, start, end int, current *seq) int {
	token := s[start:end]

	numStart := -1
	switch {
	case end < len(s) && isDigit(s[end]):
		numStart = end
	case end+1 < len(s) && s[end] == '-' && isDigit(s[end+1]):
		numStart = end + 1
	}

	if numStart < 0 {
		it := item{kind: kindQualifier, qual: canonicalQualifier(token)}
		if end == len(s) && len(current.items) > 0 {
			current.nest().add(it)
		} else {
			current.add(it)
		}
		return end
	}

	numEnd := numStart
	for numEnd < len(s) && isDigit(s[numEnd]) {
		numEnd++
	}
	it := item{
		kind:  kindQualifier,
		qual:  expandQualifier(token),
		num:   parseNumber(s[numStart:numEnd]),
		combo: true,
	}
	if len(current.items) > 0 {
		current.nest().add(it)
	} else {
		current.add(it)
	}
	return numEnd
}

func number(n *big.Int) item { return item{kind: kindNumber, num: n} }

func parseNumber(digits string) *big.Int {
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

func isSeparator(c byte) bool { return c == '.' || c == '-' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// expandQualifier resolves the single-letter shorthands that are only
// meaningful when paired with a number (a1, b2, m3).
func expandQualifier(s string) string {
	switch s {
	case "a":
		return "alpha"
	case "b":
		return "beta"
	case "m":
		return "milestone"
	}
	return canonicalQualifier(s)
}

func canonicalQualifier(s string) string {
	switch s {
	case "cr":
		return "rc"
	case "ga", "final", "release":
		return ""
	}
	return s
}

func rank(q string) int {
	if i := slices.Index(qualifiers, q); i >= 0 {
		return i
	}
	return unknownRank
}

func (it item) isNull() bool {
	switch it.kind {
	case kindNumber:
		return it.num.Sign() == 0
	case kindQualifier:
		return !it.combo && it.qual == ""
	case kindList:
		return len(it.sub.items) == 0
	}
	return false
}

// normalize strips null items (zeros, release qualifiers, empty lists) that
// are trailing or that precede a qualifier, innermost lists first.
func (s *seq) normalize() {
	for i := len(s.items) - 1; i >= 0; i-- {
		if it := s.items[i]; it.kind == kindList {
			it.sub.normalize()
		}
		if s.removable(i) {
			s.items = slices.Delete(s.items, i, i+1)
		}
	}
}

func (s *seq) removable(i int) bool {
	if !s.items[i].isNull() {
		return false
	}
	if i == len(s.items)-1 {
		return true
	}
	next := s.items[i+1]
	switch next.kind {
	case kindQualifier:
		return !next.combo
	case kindList:
		return len(next.sub.items) > 0 && next.sub.items[0].kind == kindQualifier
	}
	return false
}

// compareItems orders two items; a nil item is an absent position.
func compareItems(a, b *item) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -compareAbsent(*b)
	case b == nil:
		return compareAbsent(*a)
	case a.kind != b.kind:
		return cmp.Compare(a.kind, b.kind)
	}

	switch a.kind {
	case kindNumber:
		return a.num.Cmp(b.num)
	case kindList:
		return compareSeqs(a.sub, b.sub)
	}

	res := compareQualifiers(a.qual, b.qual)
	switch {
	case res != 0:
		return res
	case a.combo && b.combo:
		return a.num.Cmp(b.num)
	case a.combo:
		return 1
	case b.combo:
		return -1
	}
	return 0
}

// compareAbsent orders it against a missing position, which behaves like
// the release qualifier.
func compareAbsent(it item) int {
	switch it.kind {
	case kindNumber:
		if it.num.Sign() == 0 {
			return 0
		}
		return 1
	case kindQualifier:
		return cmp.Compare(rank(it.qual), releaseRank)
	case kindList:
		for _, sub := range it.sub.items {
			if res := compareAbsent(sub); res != 0 {
				return res
			}
		}
	}
	return 0
}

func compareSeqs(a, b *seq) int {
	for i := range max(len(a.items), len(b.items)) {
		var x, y *item
		if i < len(a.items) {
			x = &a.items[i]
		}
		if i < len(b.items) {
			y = &b.items[i]
		}
		if res := compareItems(x, y); res != 0 {
			return res
		}
	}
	return 0
}

func compareQualifiers(a, b string) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	if ra == unknownRank {
		return strings.Compare(a, b)
	}
	return 0
}

func (k Key) seq() *seq {
	if k.parts == nil {
		return &seq{}
	}
	return k.parts
}

// Compare returns -1, 0 or +1 as k sorts before, equal to or after o.
func (k Key) Compare(o Key) int {
	return compareSeqs(k.seq(), o.seq())
}

// Equal reports whether k and o compare equal, e.g. "1", "1.0" and "1-ga".
func (k Key) Equal(o Key) bool { return k.Compare(o) == 0 }

// String returns the version as it was written.
func (k Key) String() string { return k.raw }

// IsStable reports whether the version carries no pre-release qualifier
// (alpha, beta, milestone, rc or snapshot) at any depth.
func (k Key) IsStable() bool {
	return !hasPreRelease(k.seq())
}

func hasPreRelease(s *seq) bool {
	for _, it := range s.items {
		switch it.kind {
		case kindQualifier:
			if rank(it.qual) < releaseRank {
				return true
			}
		case kindList:
			if hasPreRelease(it.sub) {
				return true
			}
		}
	}
	return false
}

// Canonical renders k so that two keys have the same canonical string
// exactly when they compare equal. Use it as a map key.
func (k Key) Canonical() string {
	var b strings.Builder
	writeCanonical(&b, k.seq())
	return b.String()
}

func writeCanonical(b *strings.Builder, s *seq) {
	b.WriteByte('[')
	items := trimAbsent(s.items)
	for i, it := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		switch it.kind {
		case kindNumber:
			b.WriteString(it.num.String())
		case kindList:
			writeCanonical(b, it.sub)
		case kindQualifier:
			if rank(it.qual) == unknownRank {
				b.WriteString(it.qual)
			} else {
				b.WriteByte('#')
				b.WriteByte(byte('0' + rank(it.qual)))
			}
			if it.combo {
				b.WriteByte(':')
				b.WriteString(it.num.String())
			}
		}
	}
	b.WriteByte(']')
}

// trimAbsent drops trailing items that compare equal to an absent position.
func trimAbsent(items []item) []item {
	end := len(items)
	for end > 0 && compareAbsent(items[end-1]) == 0 {
		end--
	}
	return items[:end]
}

// Compare parses a and b and compares them.
func Compare(a, b string) int { return Parse(a).Compare(Parse(b)) }

// IsStable parses v and reports whether it is a stable release.
func IsStable(v string) bool { return Parse(v).IsStable() }

// LatestStable returns the greatest stable version in versions, or "" if
// none is stable.
func LatestStable(versions []string) string {
	var best Key
	found := false
	for _, v := range versions {
		k := Parse(v)
		if !k.IsStable() {
			continue
		}
		if !found || k.Compare(best) > 0 {
			best, found = k, true
		}
	}
	if !found {
		return ""
	}
	return best.String()
}
