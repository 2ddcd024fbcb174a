// Package trace records what the compiler driver is doing.
//
// Events are grouped by scope, from coarse to fine:
//
//   - ScopeDriver: one span per CLI command
//   - ScopePass: build stages (load, codegen, emit, run)
//   - ScopeModule: one span per compilation unit
//   - ScopeNode: per-function points inside codegen
//
// The level picks how deep the output goes:
//
//	zenc build --trace-out=- --trace-level=detail
//
// Tracers travel through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "codegen", 0)
//	defer span.End("")
package trace
