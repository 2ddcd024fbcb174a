package version

import (
	"fmt"

	"github.com/fatih/color"
)

// Overridden at build time via -ldflags "-X zenc/internal/version.Version=...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component in its own color.
// Anything after the patch number (pre-release, build metadata) stays plain.
func Colored() string {
	var major, minor, patch int
	var rest string
	n, _ := fmt.Sscanf(Version, "%d.%d.%d%s", &major, &minor, &patch, &rest)
	if n < 3 {
		return Version
	}
	return fmt.Sprintf("%s.%s.%s%s",
		majorColor.Sprint(major), minorColor.Sprint(minor), patchColor.Sprint(patch), rest)
}

// Line is the text printed by `zenc version`.
func Line() string {
	s := "zenc " + Colored()
	if GitCommit != "" {
		s += " (" + GitCommit + ")"
	}
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}
