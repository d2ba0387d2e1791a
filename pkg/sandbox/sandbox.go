// Package sandbox runs learner JavaScript in an isolated goja
// runtime. Every evaluation gets a fresh runtime with a wall-clock
// budget, a call-stack limit, a deterministic random source and no
// host capabilities beyond a size-bounded console.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"

	"digital.vasic.lessons/pkg/logging"
)

const (
	// DefaultTimeout is the wall-clock budget of one evaluation,
	// covering both the submission and the assertion.
	DefaultTimeout = 2 * time.Second

	// DefaultMaxCallStack is the maximum JavaScript call depth.
	DefaultMaxCallStack = 1024

	// DefaultMaxConsoleBytes caps console output kept per run.
	DefaultMaxConsoleBytes = 8 << 10

	// DefaultSeed seeds Math.random so runs are reproducible.
	DefaultSeed = 1

	submissionName = "submission.js"
	assertionName  = "assertion.js"
)

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithTimeout sets the wall-clock budget of one evaluation.
func WithTimeout(d time.Duration) Option {
	return func(s *Sandbox) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxCallStack sets the maximum JavaScript call depth.
func WithMaxCallStack(n int) Option {
	return func(s *Sandbox) {
		if n > 0 {
			s.maxCallStack = n
		}
	}
}

// WithMaxConsoleBytes bounds console output per evaluation.
func WithMaxConsoleBytes(n int) Option {
	return func(s *Sandbox) {
		if n >= 0 {
			s.maxConsoleBytes = n
		}
	}
}

// WithSeed sets the seed of Math.random.
func WithSeed(seed int64) Option {
	return func(s *Sandbox) {
		s.seed = seed
	}
}

// WithClock fixes the time source seen by Date.
func WithClock(now func() time.Time) Option {
	return func(s *Sandbox) {
		s.now = now
	}
}

// WithLogger sets the logger receiving console output.
func WithLogger(l logging.Logger) Option {
	return func(s *Sandbox) {
		if l != nil {
			s.logger = l
		}
	}
}

// Sandbox evaluates JavaScript. It holds configuration only and is
// safe for concurrent use.
type Sandbox struct {
	timeout         time.Duration
	maxCallStack    int
	maxConsoleBytes int
	seed            int64
	now             func() time.Time
	logger          logging.Logger
}

// New creates a Sandbox with defaults overridden by opts.
func New(opts ...Option) *Sandbox {
	s := &Sandbox{
		timeout:         DefaultTimeout,
		maxCallStack:    DefaultMaxCallStack,
		maxConsoleBytes: DefaultMaxConsoleBytes,
		seed:            DefaultSeed,
		logger:          logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeout returns the per-evaluation budget.
func (s *Sandbox) Timeout() time.Duration {
	return s.timeout
}

// Program is a compiled submission. A submission that failed to
// compile is still a Program; every evaluation against it reports
// the compile error.
type Program struct {
	source  string
	program *goja.Program
	err     *Error
}

// Source returns the submission text.
func (p *Program) Source() string {
	return p.source
}

// Err returns the compile error, or nil.
func (p *Program) Err() *Error {
	return p.err
}

// Compile parses a submission once so it can be run in many fresh
// runtimes.
func (s *Sandbox) Compile(source string) *Program {
	prg, err := goja.Compile(submissionName, source, false)
	if err != nil {
		return &Program{source: source, err: classify(err, s.timeout)}
	}
	return &Program{source: source, program: prg}
}

// CompileAssertion builds the function an assertion expression runs
// in. The expression is used as the returned value of a function
// taking the submission text as its only parameter, code. If that
// does not parse and the text contains a return statement, it is
// used as the function body instead.
func CompileAssertion(expression string) (*goja.Program, *Error) {
	trimmed := strings.TrimRight(strings.TrimSpace(expression), "; \t\r\n")
	if trimmed == "" {
		return nil, &Error{
			Kind:    FailureSyntax,
			Message: "assertion expression is empty",
		}
	}

	exprSrc := "(function (code) {\nreturn (" + trimmed + "\n);\n})"
	prg, exprErr := goja.Compile(assertionName, exprSrc, false)
	if exprErr == nil {
		return prg, nil
	}

	if !returnPattern.MatchString(expression) {
		return nil, classify(exprErr, 0)
	}

	bodySrc := "(function (code) {\n" + expression + "\n})"
	prg, err := goja.Compile(assertionName, bodySrc, false)
	if err == nil {
		return prg, nil
	}
	return nil, classify(exprErr, 0)
}

// Evaluate runs the submission in a fresh runtime, then calls the
// assertion with the submission text and returns the truthiness of
// its result.
func (s *Sandbox) Evaluate(
	ctx context.Context,
	sub *Program,
	expression string,
) (bool, *Error) {
	if sub.err != nil {
		return false, sub.err
	}

	assertion, cerr := CompileAssertion(expression)
	if cerr != nil {
		return false, cerr
	}

	var passed bool
	err := s.exec(ctx, func(vm *goja.Runtime) error {
		if _, err := vm.RunProgram(sub.program); err != nil {
			return err
		}

		fnVal, err := vm.RunProgram(assertion)
		if err != nil {
			return err
		}
		fn, ok := goja.AssertFunction(fnVal)
		if !ok {
			return &Error{
				Kind:    FailureInternal,
				Message: "assertion did not compile to a function",
			}
		}

		res, err := fn(goja.Undefined(), vm.ToValue(sub.source))
		if err != nil {
			return err
		}
		passed = res.ToBoolean()
		return nil
	})
	if err != nil {
		return false, err
	}
	return passed, nil
}

var returnPattern = regexp.MustCompile(`\breturn\b`)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Defines reports whether running the submission leaves name bound
// at the top level.
func (s *Sandbox) Defines(
	ctx context.Context,
	sub *Program,
	name string,
) (bool, *Error) {
	if !identifierPattern.MatchString(name) {
		return false, &Error{
			Kind:    FailureInternal,
			Message: fmt.Sprintf("invalid identifier: %q", name),
		}
	}
	return s.Evaluate(ctx, sub, "typeof "+name+" !== 'undefined'")
}

// Run executes the submission followed by script in one fresh
// runtime and returns the exported value of script.
func (s *Sandbox) Run(
	ctx context.Context,
	sub *Program,
	script string,
) (any, *Error) {
	if sub.err != nil {
		return nil, sub.err
	}

	var out any
	err := s.exec(ctx, func(vm *goja.Runtime) error {
		if _, err := vm.RunProgram(sub.program); err != nil {
			return err
		}
		if script == "" {
			return nil
		}
		v, err := vm.RunScript(assertionName, script)
		if err != nil {
			return err
		}
		out = v.Export()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Sandbox) newRuntime() *goja.Runtime {
	vm := goja.New()
	vm.SetMaxCallStackSize(s.maxCallStack)
	vm.SetRandSource(rand.New(rand.NewSource(s.seed)).Float64)
	if s.now != nil {
		vm.SetTimeSource(s.now)
	}
	installConsole(vm, s.logger, s.maxConsoleBytes)
	return vm
}

// exec runs fn on a fresh runtime under the timeout and ctx, and
// turns every failure, including panics, into an *Error.
func (s *Sandbox) exec(
	ctx context.Context,
	fn func(vm *goja.Runtime) error,
) (serr *Error) {
	if ctx.Err() != nil {
		return &Error{
			Kind:    FailureCanceled,
			Message: "execution canceled",
			Cause:   ctx.Err(),
		}
	}

	vm := s.newRuntime()

	timer := time.AfterFunc(s.timeout, func() {
		vm.Interrupt(interruptTimeout)
	})
	defer timer.Stop()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(interruptCanceled)
	})
	defer stop()

	defer func() {
		if r := recover(); r != nil {
			serr = &Error{
				Kind:    FailureInternal,
				Message: fmt.Sprintf("sandbox panic: %v", r),
			}
		}
	}()

	return classify(fn(vm), s.timeout)
}
