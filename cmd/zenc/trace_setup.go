package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"zenc/internal/trace"
)

var (
	activeTracer trace.Tracer
	rootSpan     *trace.Span
	closeOnce    sync.Once
)

// setupTracing reads --trace-level and --trace-out, attaches the tracer to
// the command context and opens the root span the pipeline nests under.
func setupTracing(cmd *cobra.Command) error {
	root := cmd.Root()
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	out, err := root.PersistentFlags().GetString("trace-out")
	if err != nil {
		return fmt.Errorf("failed to get trace-out flag: %w", err)
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// an output file alone turns on phase tracing
	if level == trace.LevelOff && out != "" {
		level = trace.LevelPhase
	}
	tracer, err := trace.New(trace.Config{Level: level, OutputPath: out})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer
	rootSpan = trace.Begin(tracer, trace.ScopeDriver, cmd.CommandPath(), 0)
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(trace.WithSpan(ctx, rootSpan))
	return nil
}

func closeTracing(cmd *cobra.Command) {
	closeOnce.Do(func() {
		if activeTracer == nil {
			return
		}
		rootSpan.End("")
		if err := activeTracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := activeTracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	})
}
