package assertion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"digital.vasic.lessons/pkg/sandbox"
)

// evaluateExpression runs the JavaScript test expression.
func evaluateExpression(
	ctx context.Context,
	sb *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	ok, serr := sb.Evaluate(ctx, sub, def.Test)
	if serr != nil {
		return false, serr
	}
	return ok, nil
}

// evaluateContains checks that the submission source contains the
// expected text (case-sensitive).
func evaluateContains(
	_ context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	expected, err := stringValue(def)
	if err != nil {
		return false, err
	}
	return strings.Contains(sub.Source(), expected), nil
}

// evaluateNotContains checks that the submission source does not
// contain the given text.
func evaluateNotContains(
	_ context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	forbidden, err := stringValue(def)
	if err != nil {
		return false, err
	}
	return !strings.Contains(sub.Source(), forbidden), nil
}

// evaluateNotEmpty checks that the submission is not blank.
func evaluateNotEmpty(
	_ context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	_ Definition,
) (bool, error) {
	return strings.TrimSpace(sub.Source()) != "", nil
}

// evaluateDefines checks that running the submission binds the
// identifier named by Value.
func evaluateDefines(
	ctx context.Context,
	sb *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	name, err := stringValue(def)
	if err != nil {
		return false, err
	}
	ok, serr := sb.Defines(ctx, sub, name)
	if serr != nil {
		return false, serr
	}
	return ok, nil
}

// evaluateMaxLength checks the submission length in characters.
func evaluateMaxLength(
	_ context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	limit, err := intValue(def)
	if err != nil {
		return false, err
	}
	return utf8.RuneCountInString(sub.Source()) <= limit, nil
}

func stringValue(def Definition) (string, error) {
	switch v := def.Value.(type) {
	case nil:
		return "", fmt.Errorf("%s assertion requires a value", def.EffectiveKind())
	case string:
		if v == "" {
			return "", fmt.Errorf("%s assertion requires a value", def.EffectiveKind())
		}
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

func intValue(def Definition) (int, error) {
	switch v := def.Value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return math.MaxInt32, nil
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s value must be an integer: %v", def.EffectiveKind(), v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s value must be an integer: %w", def.EffectiveKind(), err)
		}
		return n, nil
	case nil:
		return 0, errors.New(def.EffectiveKind() + " assertion requires a value")
	default:
		return 0, fmt.Errorf("%s value must be an integer, got %T", def.EffectiveKind(), v)
	}
}
