// Package errors mirrors the github.com/pkg/errors API. Wrapping an error that already carries a stack trace from
// the same goroutine does not add a second, redundant trace, so a logged error usually shows only its root trace.
package errors

import (
	stderrors "errors" //nolint: depguard
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors" //nolint: depguard
)

// New returns an error with the supplied message and the stack trace at the call site.
func New(message string) error {
	return newStackErr(nil, message)
}

// Errorf formats an error message and records the stack trace at the call site.
func Errorf(format string, args ...interface{}) error {
	return newStackErr(nil, fmt.Sprintf(format, args...))
}

// Wrap annotates err with message and a stack trace. Wrap(nil, ...) is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, message)
}

// Wrapf annotates err with a formatted message and a stack trace. Wrapf(nil, ...) is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, fmt.Sprintf(format, args...))
}

// WithStack annotates err with a stack trace. WithStack(nil) is nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, "")
}

// Cause walks the Cause chain and returns the innermost error.
func Cause(err error) error {
	for err != nil {
		c, ok := err.(causer)
		if !ok || c.Cause() == nil {
			break
		}
		err = c.Cause()
	}
	return err
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

type stackErr struct {
	cause error
	stack errors.StackTrace
	msg   string
}

func newStackErr(cause error, msg string) error {
	// drop this frame and the public constructor frame
	stack := errors.New("").(stackTracer).StackTrace()[2:]
	return &stackErr{cause: cause, stack: stack, msg: msg}
}

func (e *stackErr) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *stackErr) Cause() error { return e.cause }

func (e *stackErr) Unwrap() error { return e.cause }

// StackTrace returns nil when the cause already holds a trace taken from the same call path, so that
// formatting with %+v prints one trace per goroutine rather than one per wrap.
func (e *stackErr) StackTrace() errors.StackTrace {
	causeStack := e.causeStack()
	if causeStack == nil || len(causeStack) < len(e.stack) {
		return e.stack
	}
	for i := 1; i < len(e.stack); i++ {
		if causeStack[len(causeStack)-i] != e.stack[len(e.stack)-i] {
			return e.stack
		}
	}
	// the top frame differs by line when the idiom is `return errors.WithStack(err)`, compare functions only
	if sameFn(causeStack[len(causeStack)-len(e.stack)], e.stack[0]) {
		return nil
	}
	return e.stack
}

func (e *stackErr) causeStack() errors.StackTrace {
	if se, ok := e.cause.(*stackErr); ok {
		return se.stack
	}
	if st, ok := e.cause.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// nolint:errcheck
func (e *stackErr) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if !s.Flag('+') {
			io.WriteString(s, e.Error())
			return
		}
		if e.cause != nil {
			fmt.Fprintf(s, "%+v", e.cause)
		}
		if e.msg != "" {
			if e.cause != nil {
				io.WriteString(s, "\n")
			}
			io.WriteString(s, e.msg)
		}
		if stack := e.StackTrace(); stack != nil {
			fmt.Fprintf(s, "%+v", stack)
		}
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

func sameFn(f1 errors.Frame, f2 errors.Frame) bool {
	return frameFile(f1) == frameFile(f2) && frameName(f1) == frameName(f2)
}

func frameFile(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	file, _ := fn.FileLine(uintptr(f) - 1)
	return file
}

func frameName(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}
