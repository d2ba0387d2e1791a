package assertion

import (
	"context"

	"digital.vasic.lessons/pkg/sandbox"
)

// Evaluator checks one assertion against a compiled submission. A
// non-nil error means evaluation raised; the engine records its
// message and marks the assertion failed.
type Evaluator func(
	ctx context.Context,
	sb *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error)
