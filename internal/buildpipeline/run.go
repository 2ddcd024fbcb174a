package buildpipeline

import (
	"context"
	"errors"
	"fmt"

	"zenc/internal/diag"
	"zenc/internal/driver"
	"zenc/internal/observ"
	"zenc/internal/source"
	"zenc/internal/trace"
	"zenc/internal/vm"
)

// RunRequest configures compiling and interpreting a single unit.
type RunRequest struct {
	Unit           string
	Target         string
	MaxDiagnostics int
	Runtime        vm.Runtime
	VM             vm.Options
	Progress       ProgressSink
	Timer          *observ.Timer
}

// RunResult reports the exit code of main and any diagnostics.
type RunResult struct {
	ExitCode int
	Bag      *diag.Bag
	FileSet  *source.FileSet
	Timings  *Timings
}

// Run compiles req.Unit without the IR cache and executes main in the
// interpreter. Compile failures wrap ErrBuildFailed; runtime traps are
// returned unwrapped.
func Run(ctx context.Context, req *RunRequest) (RunResult, error) {
	var result RunResult
	if req == nil || req.Unit == "" {
		return result, fmt.Errorf("no unit to run")
	}
	if req.Runtime == nil {
		return result, fmt.Errorf("missing runtime")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")

	sess := driver.NewSession(driver.Options{
		Target:         req.Target,
		MaxDiagnostics: req.MaxDiagnostics,
		Tracer:         tracer,
	})
	result.Timings = &Timings{}
	result.Bag = diag.NewBag(req.MaxDiagnostics)

	emitQueued(req.Progress, []string{req.Unit})
	st := stageRunner{sink: req.Progress, file: req.Unit, timings: result.Timings, timer: req.Timer}

	var unit *driver.Unit
	if err := st.run(StageLoad, func() error {
		var err error
		unit, err = sess.Load(req.Unit)
		return err
	}); err != nil {
		var le *driver.LoadError
		if errors.As(err, &le) {
			result.Bag.Add(le.Diag)
		}
		result.FileSet = sess.FileSet()
		return result, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	var cres *driver.Result
	err := st.run(StageCodegen, func() error {
		var err error
		cres, err = sess.Compile(ctx, unit, driver.CompileOptions{NeedModule: true, TraceParent: span.ID()})
		if err != nil {
			return err
		}
		return cres.Err
	})
	if cres != nil {
		result.Bag = cres.Bag
	}
	if err != nil {
		result.FileSet = sess.FileSet()
		if cres == nil {
			return result, err
		}
		return result, fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	opts := req.VM
	if opts.Tracer == nil {
		opts.Tracer = tracer
	}
	err = st.run(StageRun, func() error {
		code, err := sess.Run(cres, req.Runtime, opts)
		result.ExitCode = code
		return err
	})
	result.FileSet = sess.FileSet()
	return result, err
}
