package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zenc/internal/ast"
	"zenc/internal/diag"
	"zenc/internal/project"
	"zenc/internal/source"
)

// UnitExt is the extension of serialised compilation units.
const UnitExt = ".zast"

// Unit is a decoded compilation unit.
type Unit struct {
	Path string
	AST  *ast.Unit
	// Hash is the SHA-256 of the encoded unit file.
	Hash project.Digest
	// File is the registered source text, valid when HasFile is set.
	File    source.FileID
	HasFile bool
}

// Name is the module name used for the emitted IR.
func (u *Unit) Name() string {
	if u.AST != nil && u.AST.Name != "" {
		return u.AST.Name
	}
	return strings.TrimSuffix(filepath.Base(u.Path), UnitExt)
}

// LoadError is returned by Load; it carries the diagnostic for the failure.
type LoadError struct {
	Path string
	Diag diag.Diagnostic
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads and decodes a .zast file. When the unit embeds its source text,
// the text is registered so diagnostics can show it.
func (s *Session) Load(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err,
			Diag: diag.NewUnplaced(diag.SevError, diag.IOLoadFileError, fmt.Sprintf("cannot read %s: %v", path, err))}
	}
	au, err := ast.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err,
			Diag: diag.NewUnplaced(diag.SevError, diag.IODecodeUnit, fmt.Sprintf("%s: %v", path, err))}
	}
	if au.Path == "" {
		au.Path = path
	}
	u := &Unit{Path: path, AST: au, Hash: project.Sum(data)}
	if len(au.Source) > 0 {
		u.File = s.addSource(au.Path, au.Source)
		u.HasFile = true
	}
	return u, nil
}
