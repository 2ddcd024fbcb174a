package vm

import (
	"bytes"
	"io"
	"os"
)

// Runtime provides the interface between the VM and the outside world.
type Runtime interface {
	// Stdout and Stderr back the C stdout and stderr streams.
	Stdout() io.Writer
	Stderr() io.Writer

	// Exit signals the VM to halt with the given exit code.
	Exit(code int)

	// ExitCode returns the exit code set by Exit, or -1 if not set.
	ExitCode() int

	// Exited returns true if Exit was called.
	Exited() bool
}

// DefaultRuntime implements Runtime using OS facilities.
type DefaultRuntime struct {
	exitCode int
	exited   bool
}

func NewDefaultRuntime() *DefaultRuntime {
	return &DefaultRuntime{exitCode: -1}
}

func (r *DefaultRuntime) Stdout() io.Writer { return os.Stdout }
func (r *DefaultRuntime) Stderr() io.Writer { return os.Stderr }

func (r *DefaultRuntime) Exit(code int) {
	r.exitCode = code
	r.exited = true
}

func (r *DefaultRuntime) ExitCode() int {
	return r.exitCode
}

func (r *DefaultRuntime) Exited() bool {
	return r.exited
}

// TestRuntime captures program output in memory.
type TestRuntime struct {
	Out      bytes.Buffer
	Err      bytes.Buffer
	exitCode int
	exited   bool
}

func NewTestRuntime() *TestRuntime {
	return &TestRuntime{exitCode: -1}
}

func (r *TestRuntime) Stdout() io.Writer { return &r.Out }
func (r *TestRuntime) Stderr() io.Writer { return &r.Err }

func (r *TestRuntime) Exit(code int) {
	r.exitCode = code
	r.exited = true
}

func (r *TestRuntime) ExitCode() int {
	return r.exitCode
}

func (r *TestRuntime) Exited() bool {
	return r.exited
}
