// Package version orders Maven version strings.
//
// # Overview
//
// A version is split on "." and "-" and on every switch between digits and
// letters. Numbers compare by magnitude with no width limit, qualifiers by a
// fixed rank:
//
//	alpha < beta < milestone < rc < snapshot < "" (release) < sp < anything else
//
// Unknown qualifiers compare lexically among themselves. The aliases a, b and
// m (only when followed by a number), cr, ga, final and release map onto the
// ranked names. A qualifier directly followed by a number, as in "rc1" or
// "rc-1", forms a single combination that sorts after the bare qualifier.
//
// Trailing zeros and release qualifiers are dropped before comparing, so
// "1", "1.0", "1-0" and "1-ga" are all equal.
//
// # Usage
//
//	if version.Compare("1.0.RC2", "1.0.1") < 0 {
//	    // RC2 is older
//	}
//
//	latest := version.LatestStable([]string{"1.0.0", "1.0.1", "1.1.0-beta1"})
//	// latest == "1.0.1"
//
// [Key.Canonical] gives a string that is equal for equal versions and can be
// used as a map key.
package version
