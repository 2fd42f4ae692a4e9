package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	info := Current()
	if info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("incomplete info: %+v", info)
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def4567890"
	BuildDate = "2024-01-15T10:30:00Z"

	s := Current().String()
	for _, want := range []string{"epsc 1.2.3", "(abc123def456)", "built 2024-01-15T10:30:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestColored(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "2.5.1-rc1"
	if got := Colored(false); got != "2.5.1-rc1" {
		t.Errorf("Colored(false) = %q", got)
	}
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-rc1") {
		t.Errorf("Colored(true) = %q", got)
	}

	Version = "weird"
	if got := Colored(true); got != "weird" {
		t.Errorf("non-semver should pass through, got %q", got)
	}
}
