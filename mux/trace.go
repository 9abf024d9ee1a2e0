package mux

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// Frame is one entry of an error trace.
type Frame struct {
	Function string `json:"function" yaml:"function"`
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line" yaml:"line"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.File, f.Line)
}

// StackTracer is implemented by errors carrying the stack of the place they
// were created at.
type StackTracer interface {
	StackTrace() []Frame
}

// callers captures the current stack, skipping skip frames above the caller
// of callers.
func callers(skip int) []Frame {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		if f.Function != "" {
			out = append(out, Frame{Function: f.Function, File: f.File, Line: f.Line})
		}
		if !more {
			break
		}
	}
	return out
}

// withStack attaches the creation stack to an error.
type withStack struct {
	err   error
	stack []Frame
}

func (e *withStack) Error() string       { return e.err.Error() }
func (e *withStack) Unwrap() error       { return e.err }
func (e *withStack) StackTrace() []Frame { return e.stack }

// Errorf formats an error like fmt.Errorf and records the caller's stack.
// The error response of a failed request points at the Errorf call site.
func Errorf(format string, args ...any) error {
	return &withStack{err: fmt.Errorf(format, args...), stack: callers(1)}
}

// WithStack records the caller's stack on err. It returns nil for nil and
// err itself when it already carries a stack.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var st StackTracer
	if errors.As(err, &st) {
		return err
	}
	return &withStack{err: err, stack: callers(1)}
}

// PanicError is the error a recovered panic is turned into.
type PanicError struct {
	Value any
	stack []Frame
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StackTrace implements StackTracer. The first frame is the panic site.
func (e *PanicError) StackTrace() []Frame {
	return e.stack
}

// newPanicError must be called from the deferred recover function.
func newPanicError(v any) *PanicError {
	stack := callers(1)
	// Drop the runtime frames between the deferred function and the site
	// that panicked.
	for i, f := range stack {
		if f.Function == "runtime.gopanic" || strings.HasPrefix(f.Function, "runtime.panic") {
			rest := stack[i+1:]
			for len(rest) > 0 && strings.HasPrefix(rest[0].Function, "runtime.") {
				rest = rest[1:]
			}
			stack = rest
			break
		}
	}
	return &PanicError{Value: v, stack: stack}
}

// traceOf returns the frames used in the error response for err. fallback
// is used when err carries no stack.
func traceOf(err error, fallback []Frame) []Frame {
	var st StackTracer
	if errors.As(err, &st) {
		if frames := st.StackTrace(); len(frames) > 0 {
			return frames
		}
	}
	return fallback
}
