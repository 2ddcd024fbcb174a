// Package buildpipeline runs units through load, codegen and emit, in
// parallel, reporting progress events and stage timings.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"zenc/internal/diag"
	"zenc/internal/driver"
	"zenc/internal/observ"
	"zenc/internal/source"
	"zenc/internal/trace"
)

// ErrBuildFailed is returned when at least one unit did not compile.
var ErrBuildFailed = errors.New("build failed")

// BuildRequest configures a build.
type BuildRequest struct {
	Units []string
	// OutDir receives one .ll per unit; empty means nothing is written.
	OutDir         string
	Target         string
	Jobs           int
	MaxDiagnostics int
	Cache          *driver.DiskCache
	Progress       ProgressSink
	// Timer is optional; when set every unit stage is recorded as a phase.
	Timer *observ.Timer
}

// UnitResult is the outcome for one unit. Bag is never nil.
type UnitResult struct {
	Path    string
	OutPath string
	IR      string
	Cached  bool
	Bag     *diag.Bag
	Err     error
}

// BuildResult holds per-unit results in request order.
type BuildResult struct {
	Units   []UnitResult
	FileSet *source.FileSet
	Timings *Timings
}

// Failed counts units that did not build.
func (r BuildResult) Failed() int {
	n := 0
	for _, u := range r.Units {
		if u.Err != nil {
			n++
		}
	}
	return n
}

// Build compiles every unit. A failing unit does not stop the others; the
// returned error wraps ErrBuildFailed when any unit failed and is the
// context error on cancellation.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Units) == 0 {
		return result, fmt.Errorf("no units to build")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "build", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	sess := driver.NewSession(driver.Options{
		Target:         req.Target,
		MaxDiagnostics: req.MaxDiagnostics,
		Cache:          req.Cache,
		Tracer:         tracer,
	})
	if req.OutDir != "" {
		if err := os.MkdirAll(req.OutDir, 0o750); err != nil {
			return result, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	result.Units = make([]UnitResult, len(req.Units))
	result.Timings = &Timings{}
	emitQueued(req.Progress, req.Units)

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Units)))
	for i, path := range req.Units {
		i, path := i, path
		g.Go(func() error {
			// results[i] is owned by this goroutine
			res, err := buildUnit(gctx, sess, req, result.Timings, path, span.ID())
			result.Units[i] = res
			return err
		})
	}
	err := g.Wait()
	result.FileSet = sess.FileSet()
	if err != nil {
		return result, err
	}
	if n := result.Failed(); n > 0 {
		emit(req.Progress, "", StageEmit, StatusError, ErrBuildFailed, 0)
		return result, fmt.Errorf("%w: %d of %d units", ErrBuildFailed, n, len(req.Units))
	}
	emit(req.Progress, "", StageEmit, StatusDone, nil, 0)
	return result, nil
}

// buildUnit returns a non-nil error only for cancellation; unit failures are
// recorded in the result.
func buildUnit(ctx context.Context, sess *driver.Session, req *BuildRequest, timings *Timings, path string, parent uint64) (UnitResult, error) {
	res := UnitResult{Path: path}
	span := trace.Begin(sess.Tracer(), trace.ScopeModule, "unit:"+filepath.Base(path), parent)
	defer func() {
		detail := "ok"
		if res.Err != nil {
			detail = res.Err.Error()
		}
		span.End(detail)
	}()

	st := stageRunner{sink: req.Progress, file: path, timings: timings, timer: req.Timer}

	var unit *driver.Unit
	loadErr := st.run(StageLoad, func() error {
		var err error
		unit, err = sess.Load(path)
		return err
	})
	if loadErr != nil {
		res.Err = loadErr
		res.Bag = diag.NewBag(1)
		var le *driver.LoadError
		if errors.As(loadErr, &le) {
			res.Bag.Add(le.Diag)
		}
		return res, nil
	}

	var cres *driver.Result
	err := st.run(StageCodegen, func() error {
		var err error
		if cres, err = sess.Compile(ctx, unit, driver.CompileOptions{TraceParent: span.ID()}); err != nil {
			return err
		}
		return cres.Err
	})
	if cres == nil {
		// cancelled before codegen produced anything
		res.Bag, res.Err = diag.NewBag(1), err
		return res, err
	}
	res.Bag, res.IR, res.Cached = cres.Bag, cres.IR, cres.Cached
	if err != nil {
		res.Err = err
		return res, nil
	}

	if req.OutDir == "" {
		return res, nil
	}
	out := filepath.Join(req.OutDir, unit.Name()+".ll")
	if err := st.run(StageEmit, func() error { return os.WriteFile(out, []byte(res.IR), 0o600) }); err != nil {
		res.Err = fmt.Errorf("write %s: %w", out, err)
		res.Bag.Add(diag.NewUnplaced(diag.SevError, diag.IOWriteArtifact, res.Err.Error()))
		return res, nil
	}
	res.OutPath = out
	return res, nil
}

type stageRunner struct {
	sink    ProgressSink
	file    string
	timings *Timings
	timer   *observ.Timer
}

func (s stageRunner) run(stage Stage, fn func() error) error {
	emit(s.sink, s.file, stage, StatusWorking, nil, 0)
	idx := -1
	if s.timer != nil {
		idx = s.timer.Begin(string(stage) + " " + filepath.Base(s.file))
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.timings.Add(stage, elapsed)
	if s.timer != nil {
		note := ""
		if err != nil {
			note = "failed"
		}
		s.timer.End(idx, note)
	}
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(s.sink, s.file, stage, status, err, elapsed)
	return err
}
