package driver

import (
	"context"
	"errors"
	"fmt"

	"zenc/internal/backend/ir"
	"zenc/internal/backend/llvm"
	"zenc/internal/diag"
	"zenc/internal/project"
	"zenc/internal/trace"
	"zenc/internal/version"
)

// Result is the outcome of compiling one unit. Err is set when codegen
// failed; Bag then holds exactly one error diagnostic.
type Result struct {
	Unit *Unit
	// Module is nil when IR came from the cache.
	Module *ir.Module
	IR     string
	Bag    *diag.Bag
	Cached bool
	Err    error
}

// CompileOptions tunes a single Compile call.
type CompileOptions struct {
	// NeedModule forces a fresh compilation so Result.Module is set; the
	// interpreter needs it.
	NeedModule bool
	// TraceParent nests the codegen span under a pipeline span.
	TraceParent uint64
}

// CacheKey identifies the IR of u for this session's target and compiler version.
func (s *Session) CacheKey(u *Unit) project.Digest {
	return project.Combine(u.Hash, []byte(s.opts.Target), []byte(version.Version))
}

// Compile generates IR for u. Codegen failures are reported through the
// returned Result, not the error; the error is reserved for cancellation.
func (s *Session) Compile(ctx context.Context, u *Unit, opts CompileOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{Unit: u, Bag: s.newBag()}
	key := s.CacheKey(u)
	if !opts.NeedModule {
		if cached, ok := s.lookupCache(key, res.Bag); ok {
			res.IR, res.Cached = cached.IR, true
			for _, w := range cached.Warnings {
				res.Bag.Add(diag.NewUnplaced(w.Severity, w.Code, w.Message))
			}
			trace.Point(s.opts.Tracer, trace.ScopeModule, "cache-hit", u.Name(), opts.TraceParent)
			return res, nil
		}
	}

	mod, err := llvm.Compile(u.AST.Program, llvm.Options{
		ModuleName:  u.Name(),
		Triple:      s.opts.Target,
		Reporter:    &unitReporter{unit: u, next: diag.BagReporter{Bag: res.Bag}},
		Tracer:      s.opts.Tracer,
		TraceParent: opts.TraceParent,
	})
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", u.Path, err)
		var ce *llvm.CompileError
		if errors.As(err, &ce) {
			res.Bag.Add(placeInUnit(u, ce.ToDiagnostic()))
		} else {
			res.Bag.Add(diag.NewUnplaced(diag.SevError, diag.CgnInternalError, err.Error()))
		}
		return res, nil
	}
	res.Module = mod
	res.IR = mod.String()
	s.storeCache(key, u, res)
	return res, nil
}

func (s *Session) lookupCache(key project.Digest, bag *diag.Bag) (*CachedIR, bool) {
	cached, ok, err := s.opts.Cache.Get(key)
	if err != nil {
		bag.Add(diag.NewUnplaced(diag.SevWarning, diag.IOCacheCorrupted, err.Error()))
		return nil, false
	}
	if !ok || cached.Target != s.opts.Target {
		return nil, false
	}
	return cached, true
}

func (s *Session) storeCache(key project.Digest, u *Unit, res *Result) {
	if s.opts.Cache == nil {
		return
	}
	payload := &CachedIR{Unit: u.Name(), Target: s.opts.Target, IR: res.IR}
	for _, d := range res.Bag.Items() {
		payload.Warnings = append(payload.Warnings, CachedDiag{Severity: d.Severity, Code: d.Code, Message: d.Message})
	}
	if err := s.opts.Cache.Put(key, payload); err != nil {
		res.Bag.Add(diag.NewUnplaced(diag.SevWarning, diag.IOWriteArtifact, fmt.Sprintf("cache write failed: %v", err)))
	}
}

// placeInUnit rebases a diagnostic's spans onto the file the unit registered.
// Spans inside a unit always name file 0.
func placeInUnit(u *Unit, d diag.Diagnostic) diag.Diagnostic {
	if !d.HasSpan {
		return d
	}
	if !u.HasFile {
		d.HasSpan = false
		return d
	}
	d.Primary.File = u.File
	for i := range d.Notes {
		d.Notes[i].Span.File = u.File
	}
	return d
}

type unitReporter struct {
	unit *Unit
	next diag.Reporter
}

func (r *unitReporter) Report(d diag.Diagnostic) {
	r.next.Report(placeInUnit(r.unit, d))
}
