// Package driver turns .zast compilation units into LLVM IR: it loads units,
// runs the code generator, converts its errors into diagnostics and caches
// emitted IR on disk.
package driver

import (
	"sync"

	"zenc/internal/diag"
	"zenc/internal/source"
	"zenc/internal/trace"
)

// Options configures a Session.
type Options struct {
	Target         string
	MaxDiagnostics int
	// Cache is optional; a nil cache disables IR caching.
	Cache  *DiskCache
	Tracer trace.Tracer
}

// Session holds state shared by the units of one build. Its methods are safe
// for concurrent use.
type Session struct {
	opts Options

	mu    sync.Mutex
	files *source.FileSet
}

func NewSession(opts Options) *Session {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	return &Session{opts: opts, files: source.NewFileSet()}
}

// FileSet returns the sources registered by loaded units. Read it only after
// all loads have finished.
func (s *Session) FileSet() *source.FileSet { return s.files }

func (s *Session) Target() string { return s.opts.Target }

func (s *Session) newBag() *diag.Bag { return diag.NewBag(s.opts.MaxDiagnostics) }

func (s *Session) addSource(path string, content []byte) source.FileID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Add(path, content, source.FileVirtual)
}

func (s *Session) Tracer() trace.Tracer { return s.opts.Tracer }
