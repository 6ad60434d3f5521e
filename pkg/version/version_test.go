package version

import (
	"testing"
)

func assertOrder(t *testing.T, versions ...string) {
	t.Helper()
	for i := 0; i < len(versions)-1; i++ {
		a, b := versions[i], versions[i+1]
		if got := Compare(a, b); got >= 0 {
			t.Errorf("Compare(%q, %q) = %d, want < 0", a, b, got)
		}
		if got := Compare(b, a); got <= 0 {
			t.Errorf("Compare(%q, %q) = %d, want > 0", b, a, got)
		}
	}
}

func assertEqual(t *testing.T, a, b string) {
	t.Helper()
	if got := Compare(a, b); got != 0 {
		t.Errorf("Compare(%q, %q) = %d, want 0", a, b, got)
	}
	if got := Compare(b, a); got != 0 {
		t.Errorf("Compare(%q, %q) = %d, want 0", b, a, got)
	}
	if ka, kb := Parse(a).Canonical(), Parse(b).Canonical(); ka != kb {
		t.Errorf("Canonical(%q) = %s, Canonical(%q) = %s, want equal", a, ka, b, kb)
	}
}

func TestEquivalentForms(t *testing.T) {
	tests := []struct{ a, b string }{
		{"1", "1.0"},
		{"1", "1-0"},
		{"1.0", "1-0"},
		{"1", "1.0.0"},
		{"1-ga", "1"},
		{"1-final", "1"},
		{"1-release", "1"},
		{"1-ga", "1-final"},
		{"1-cr", "1-rc"},
		{"rc-1", "rc1"},
		{"1alpha", "1-alpha"},
		{"1.alpha", "1-alpha"},
		{"1rc1", "1-rc1"},
		{"1..2", "1.0.2"},
		{"1--2", "1-0-2"},
		{"1.0.0.0.0", "1"},
		{"1.0-A1", "1.0-alpha-1"},
		{"1.0.M2", "1.0-milestone-2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.a+"=="+tt.b, func(t *testing.T) {
			assertEqual(t, tt.a, tt.b)
		})
	}
}

func TestOrdering(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
	}{
		{"release bracketed", []string{"1-rc", "1", "1-sp"}},
		{"rc forms", []string{"1.0.RC2", "1.0-RC3", "1.0.1"}},
		{"bare qualifier before combination", []string{"rc", "rc1", "rc2"}},
		{"numeric", []string{"1", "2", "10"}},
		{"minor", []string{"1.0", "1.1"}},
		{"qualifier ranks", []string{"1-alpha", "1-beta", "1-milestone", "1-rc", "1-snapshot", "1", "1-sp", "1-unknown"}},
		{"unknown lexical", []string{"1-abc", "1-abd", "1-xyz"}},
		{"transitions", []string{"1rc1", "1rc2"}},
		{"hyphenated transitions", []string{"1-rc1", "1-rc2"}},
		{"alpha numbers", []string{"1.0-alpha-1", "1.0-alpha-2"}},
		{"alpha before beta", []string{"1.0-alpha-1", "1.0-beta-1"}},
		{"deeply nested", []string{"1.1.1.1.1", "1.1.1.1.2"}},
		{"empty first", []string{"", "1"}},
		{"snapshot before release", []string{"2.0-SNAPSHOT", "2.0", "2.0.1-SNAPSHOT", "2.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertOrder(t, tt.versions...)
		})
	}
}

func TestBigNumbers(t *testing.T) {
	assertOrder(t, "999999999", "1000000000")
	assertOrder(t, "999999999999999999", "1000000000000000000")
	assertOrder(t, "9223372036854775807", "9223372036854775808", "100000000000000000000000")
	assertEqual(t, "18446744073709551616.0", "18446744073709551616")
}

func TestCompareAntisymmetricAndTransitive(t *testing.T) {
	versions := []string{
		"", "1", "1.0", "1-rc", "1-sp", "1-ga", "1.0.RC2", "1.0-RC3", "1.0.1",
		"rc", "rc1", "rc-1", "rc2", "1..2", "1.0.2", "2.0-SNAPSHOT", "1-xyz",
		"1.0-alpha-1", "1.0-beta-1", "1.0-m1", "3.2.1-jre", "10", "1.1",
	}

	for _, a := range versions {
		for _, b := range versions {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%q, %q) = %d but Compare(%q, %q) = %d", a, b, Compare(a, b), b, a, Compare(b, a))
			}
			for _, c := range versions {
				if Compare(a, b) < 0 && Compare(b, c) < 0 && Compare(a, c) >= 0 {
					t.Errorf("not transitive: %q < %q < %q but Compare(%q, %q) = %d", a, b, c, a, c, Compare(a, c))
				}
			}
		}
	}
}

func TestIsStable(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.0.0", true},
		{"1.0.0-beta1", false},
		{"1.1.0-alpha1", false},
		{"2.0-SNAPSHOT", false},
		{"1.0-RC1", false},
		{"1.0.CR2", false},
		{"1.0-M3", false},
		{"1.0-sp1", true},
		{"32.1.3-jre", true},
		{"1.0-GA", true},
		{"1.0.Final", true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := IsStable(tt.version); got != tt.want {
				t.Errorf("IsStable(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestLatestStable(t *testing.T) {
	tests := []struct {
		name     string
		versions []string
		want     string
	}{
		{"skips pre-releases", []string{"1.0.0", "1.0.1", "1.1.0-alpha1", "1.1.0-beta1"}, "1.0.1"},
		{"unordered input", []string{"2.10", "2.9", "2.1"}, "2.10"},
		{"none stable", []string{"1.0-rc1", "1.0-SNAPSHOT"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LatestStable(tt.versions); got != tt.want {
				t.Errorf("LatestStable(%v) = %q, want %q", tt.versions, got, tt.want)
			}
		})
	}
}

func TestKeyString(t *testing.T) {
	k := Parse("1.0.RC2")
	if k.String() != "1.0.RC2" {
		t.Errorf("String() = %q, want %q", k.String(), "1.0.RC2")
	}
	if !k.Equal(Parse("1.0-rc-2")) {
		t.Error("1.0.RC2 should equal 1.0-rc-2")
	}

	var zero Key
	if !zero.Equal(Parse("")) {
		t.Error("zero Key should equal the empty version")
	}
}
