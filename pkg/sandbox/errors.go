package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// FailureKind classifies why an evaluation did not produce a
// value.
type FailureKind string

const (
	// FailureSyntax means the submission or the assertion could
	// not be parsed.
	FailureSyntax FailureKind = "syntax"
	// FailureRuntime means the code threw while running.
	FailureRuntime FailureKind = "runtime"
	// FailureTimeout means the wall-clock budget ran out.
	FailureTimeout FailureKind = "timeout"
	// FailureCanceled means the caller's context ended.
	FailureCanceled FailureKind = "canceled"
	// FailureInternal means the host failed, not the script.
	FailureInternal FailureKind = "internal"
)

// Error is the failure of one evaluation. Message is what the
// learner sees.
type Error struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type interruptReason int

const (
	interruptTimeout interruptReason = iota + 1
	interruptCanceled
)

const stackOverflowMessage = "Maximum call stack size exceeded"

// classify turns an error returned by goja into an *Error.
func classify(err error, budget time.Duration) *Error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return se
	}

	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		switch ie.Value() {
		case interruptTimeout:
			return &Error{
				Kind: FailureTimeout,
				Message: fmt.Sprintf(
					"execution timed out after %s", budget,
				),
				Cause: err,
			}
		case interruptCanceled:
			return &Error{
				Kind:    FailureCanceled,
				Message: "execution canceled",
				Cause:   err,
			}
		}
		return &Error{Kind: FailureInternal, Message: ie.Error(), Cause: err}
	}

	var so *goja.StackOverflowError
	if errors.As(err, &so) {
		return &Error{
			Kind:    FailureRuntime,
			Message: stackOverflowMessage,
			Cause:   err,
		}
	}

	var cse *goja.CompilerSyntaxError
	if errors.As(err, &cse) {
		return &Error{Kind: FailureSyntax, Message: cse.Message, Cause: err}
	}

	var cre *goja.CompilerReferenceError
	if errors.As(err, &cre) {
		return &Error{Kind: FailureSyntax, Message: cre.Message, Cause: err}
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		kind := FailureRuntime
		if errorName(exc.Value()) == "SyntaxError" {
			kind = FailureSyntax
		}
		return &Error{
			Kind:    kind,
			Message: exceptionMessage(exc),
			Cause:   err,
		}
	}

	return &Error{Kind: FailureInternal, Message: err.Error(), Cause: err}
}

// exceptionMessage returns the message property of thrown Error
// objects and the string form of any other thrown value.
func exceptionMessage(exc *goja.Exception) string {
	v := exc.Value()
	if v == nil {
		return exc.Error()
	}
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return v.String()
}

func errorName(v goja.Value) string {
	obj, ok := v.(*goja.Object)
	if !ok {
		return ""
	}
	name := obj.Get("name")
	if name == nil || goja.IsUndefined(name) {
		return ""
	}
	return name.String()
}
