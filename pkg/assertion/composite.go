package assertion

import (
	"context"
	"fmt"

	"digital.vasic.lessons/pkg/sandbox"
)

// AllPassComposite evaluates every assertion and folds the results
// into one: passed when all passed, otherwise the first failure.
func AllPassComposite(
	ctx context.Context,
	engine Engine,
	sub *sandbox.Program,
	defs []Definition,
) Result {
	results := engine.EvaluateAll(ctx, sub, defs)

	for _, r := range results {
		if !r.Passed {
			return Result{
				Description: fmt.Sprintf(
					"assertion '%s' failed", r.Description,
				),
				Kind:    KindAllPass,
				Error:   r.Error,
				Failure: r.Failure,
			}
		}
	}

	return Result{
		Description: fmt.Sprintf(
			"all %d assertions passed", len(results),
		),
		Kind:   KindAllPass,
		Passed: true,
	}
}

// AnyPassComposite evaluates every assertion and passes when at
// least one passed.
func AnyPassComposite(
	ctx context.Context,
	engine Engine,
	sub *sandbox.Program,
	defs []Definition,
) Result {
	results := engine.EvaluateAll(ctx, sub, defs)

	for _, r := range results {
		if r.Passed {
			return Result{
				Description: fmt.Sprintf(
					"assertion '%s' passed", r.Description,
				),
				Kind:   KindAnyPass,
				Passed: true,
			}
		}
	}

	return Result{
		Description: fmt.Sprintf(
			"none of %d assertions passed", len(results),
		),
		Kind: KindAnyPass,
	}
}

// SubDefinitions returns the nested assertions of an all_pass or
// any_pass definition. Value may hold definitions, compact strings
// or decoded mappings.
func SubDefinitions(def Definition) ([]Definition, error) {
	var defs []Definition

	switch v := def.Value.(type) {
	case []Definition:
		defs = v
	case []string:
		for _, s := range v {
			defs = append(defs, ParseAssertionString(s))
		}
	case []any:
		for i, item := range v {
			d, err := subDefinition(item)
			if err != nil {
				return nil, fmt.Errorf("%s value[%d]: %w", def.Kind, i, err)
			}
			defs = append(defs, d)
		}
	default:
		return nil, fmt.Errorf(
			"%s requires a list of assertions, got %T", def.Kind, def.Value,
		)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("%s requires at least one assertion", def.Kind)
	}
	return defs, nil
}

func subDefinition(item any) (Definition, error) {
	switch v := item.(type) {
	case string:
		return ParseAssertionString(v), nil
	case Definition:
		return v, nil
	case map[string]any:
		d := Definition{Value: v["value"]}
		for key, dst := range map[string]*string{
			"description": &d.Description,
			"test":        &d.Test,
			"kind":        &d.Kind,
		} {
			if raw, ok := v[key]; ok {
				s, ok := raw.(string)
				if !ok {
					return Definition{}, fmt.Errorf("%s must be a string", key)
				}
				*dst = s
			}
		}
		if d.Description == "" {
			d.Description = d.Test
		}
		return d, nil
	default:
		return Definition{}, fmt.Errorf("unsupported assertion %T", item)
	}
}

func (e *DefaultEngine) evaluateAllPass(
	ctx context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	defs, err := SubDefinitions(def)
	if err != nil {
		return false, err
	}

	r := AllPassComposite(ctx, e, sub, defs)
	if r.Error != "" {
		return false, &sandbox.Error{Kind: r.Failure, Message: r.Error}
	}
	return r.Passed, nil
}

func (e *DefaultEngine) evaluateAnyPass(
	ctx context.Context,
	_ *sandbox.Sandbox,
	sub *sandbox.Program,
	def Definition,
) (bool, error) {
	defs, err := SubDefinitions(def)
	if err != nil {
		return false, err
	}
	return AnyPassComposite(ctx, e, sub, defs).Passed, nil
}
