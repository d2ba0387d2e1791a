package assertion

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"digital.vasic.lessons/pkg/sandbox"
)

// Engine defines the interface for assertion evaluation engines.
type Engine interface {
	// Compile prepares a submission for evaluation.
	Compile(source string) *sandbox.Program

	// Evaluate checks a single assertion. It never panics and
	// never returns an error; failures are recorded in the
	// Result.
	Evaluate(
		ctx context.Context,
		sub *sandbox.Program,
		def Definition,
	) Result

	// EvaluateAll checks every assertion in order and returns
	// one result per definition, in the same order.
	EvaluateAll(
		ctx context.Context,
		sub *sandbox.Program,
		defs []Definition,
	) []Result

	// Register adds a custom evaluator for the given kind.
	// Returns an error if the kind is already registered.
	Register(kind string, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	sandbox *sandbox.Sandbox

	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine with the built-in evaluators
// registered. A nil sandbox gets the default configuration.
func NewEngine(sb *sandbox.Sandbox) *DefaultEngine {
	if sb == nil {
		sb = sandbox.New()
	}
	e := &DefaultEngine{
		sandbox:    sb,
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators[KindExpression] = evaluateExpression
	e.evaluators[KindContains] = evaluateContains
	e.evaluators[KindNotContains] = evaluateNotContains
	e.evaluators[KindNotEmpty] = evaluateNotEmpty
	e.evaluators[KindDefines] = evaluateDefines
	e.evaluators[KindMaxLength] = evaluateMaxLength
	e.evaluators[KindAllPass] = e.evaluateAllPass
	e.evaluators[KindAnyPass] = e.evaluateAnyPass
}

// Sandbox returns the sandbox evaluations run in.
func (e *DefaultEngine) Sandbox() *sandbox.Sandbox {
	return e.sandbox
}

// Compile prepares a submission for evaluation.
func (e *DefaultEngine) Compile(source string) *sandbox.Program {
	return e.sandbox.Compile(source)
}

// Register adds a custom evaluator for the given kind.
func (e *DefaultEngine) Register(kind string, evaluator Evaluator) error {
	if kind == "" {
		return errors.New("assertion kind must not be empty")
	}
	if evaluator == nil {
		return fmt.Errorf("nil evaluator for assertion kind: %s", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[kind]; exists {
		return fmt.Errorf(
			"assertion kind already registered: %s", kind,
		)
	}

	e.evaluators[kind] = evaluator
	return nil
}

// HasEvaluator returns true if the given kind has a registered
// evaluator.
func (e *DefaultEngine) HasEvaluator(kind string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[kind]
	return exists
}

// Kinds returns the registered kinds.
func (e *DefaultEngine) Kinds() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	kinds := make([]string, 0, len(e.evaluators))
	for k := range e.evaluators {
		kinds = append(kinds, k)
	}
	return kinds
}

// Evaluate runs a single assertion against the submission.
func (e *DefaultEngine) Evaluate(
	ctx context.Context,
	sub *sandbox.Program,
	def Definition,
) Result {
	kind := def.EffectiveKind()
	res := Result{Description: def.Description, Kind: kind}

	e.mu.RLock()
	evaluator, exists := e.evaluators[kind]
	e.mu.RUnlock()

	if !exists {
		res.Error = fmt.Sprintf("unknown assertion kind: %s", kind)
		res.Failure = sandbox.FailureInternal
		return res
	}

	passed, err := e.call(ctx, evaluator, sub, def)
	if err != nil {
		var se *sandbox.Error
		if errors.As(err, &se) {
			res.Failure = se.Kind
			res.Error = se.Message
		} else {
			res.Failure = sandbox.FailureInternal
			res.Error = err.Error()
		}
		return res
	}

	res.Passed = passed
	return res
}

// call invokes evaluator, turning a panic into an error.
func (e *DefaultEngine) call(
	ctx context.Context,
	evaluator Evaluator,
	sub *sandbox.Program,
	def Definition,
) (passed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			passed = false
			err = fmt.Errorf("evaluator panic: %v", r)
		}
	}()
	return evaluator(ctx, e.sandbox, sub, def)
}

// EvaluateAll checks every assertion in order. It never stops
// early: a failing or raising assertion does not prevent later
// ones from being evaluated.
func (e *DefaultEngine) EvaluateAll(
	ctx context.Context,
	sub *sandbox.Program,
	defs []Definition,
) []Result {
	results := make([]Result, 0, len(defs))
	for _, d := range defs {
		results = append(results, e.Evaluate(ctx, sub, d))
	}
	return results
}
