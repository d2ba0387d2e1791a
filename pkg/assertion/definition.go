// Package assertion evaluates exercise assertions against learner
// submissions. Assertions are JavaScript expressions by default;
// built-in kinds check the submission source directly and custom
// kinds can be registered.
package assertion

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"digital.vasic.lessons/pkg/sandbox"
)

// Built-in assertion kinds.
const (
	KindExpression  = "expression"
	KindContains    = "contains"
	KindNotContains = "not_contains"
	KindNotEmpty    = "not_empty"
	KindDefines     = "defines"
	KindMaxLength   = "max_length"

	// Composite kinds take a list of nested assertions as Value.
	KindAllPass = "all_pass"
	KindAnyPass = "any_pass"
)

// Definition is one checkable claim about a submission.
type Definition struct {
	// Description is shown to the learner next to the outcome.
	Description string `json:"description" yaml:"description"`

	// Test is the JavaScript expression, or function body, that
	// must be truthy. The submission text is available as code.
	Test string `json:"test" yaml:"test"`

	// Kind selects the evaluator. Empty means "expression".
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Value is the argument of built-in kinds.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// UnmarshalYAML accepts either a mapping or a compact string such
// as "contains:isValidCID".
func (d *Definition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*d = ParseAssertionString(s)
		return nil
	}

	type plain Definition
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = Definition(p)
	return nil
}

// UnmarshalJSON accepts either an object or a compact string.
func (d *Definition) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = ParseAssertionString(s)
		return nil
	}

	type plain Definition
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Definition(p)
	return nil
}

// EffectiveKind returns Kind, defaulting to KindExpression.
func (d Definition) EffectiveKind() string {
	if d.Kind == "" {
		return KindExpression
	}
	return d.Kind
}

// Result is the outcome of evaluating one Definition. The
// description is copied so results outlive their definitions.
type Result struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Passed      bool   `json:"passed"`

	// Error is set only when evaluation raised.
	Error   string              `json:"error,omitempty"`
	Failure sandbox.FailureKind `json:"failure,omitempty"`
}
