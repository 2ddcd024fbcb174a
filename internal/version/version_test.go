package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestLine(t *testing.T) {
	prevNoColor := color.NoColor
	color.NoColor = true
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "zenc 0.1.0-dev"},
		{"1.2.3", "abc123", "", "zenc 1.2.3 (abc123)"},
		{"1.2.3-rc.1", "abc123", "2024-01-15", "zenc 1.2.3-rc.1 (abc123) built 2024-01-15"},
		{"nightly", "", "", "zenc nightly"},
	}
	for _, tc := range tests {
		Version, GitCommit, BuildDate = tc.version, tc.commit, tc.date
		if got := Line(); got != tc.want {
			t.Errorf("Line() = %q, want %q", got, tc.want)
		}
	}
}
