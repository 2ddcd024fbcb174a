package diagfmt

import (
	"path/filepath"

	"zenc/internal/source"
)

func formatPath(f *source.File, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil && f.Flags&source.FileVirtual == 0 {
			return abs
		}
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	}
	return f.DisplayPath()
}
