package lesson

import "digital.vasic.lessons/pkg/assertion"

// CompletionPolicy decides whether a run's results complete a
// lesson.
type CompletionPolicy int

const (
	// RequireAssertions completes a lesson only when at least one
	// assertion ran and all of them passed.
	RequireAssertions CompletionPolicy = iota
	// VacuousPass completes a lesson whenever no assertion
	// failed, including when there were none.
	VacuousPass
)

// PolicyFor maps the allow_empty setting onto a policy.
func PolicyFor(allowEmpty bool) CompletionPolicy {
	if allowEmpty {
		return VacuousPass
	}
	return RequireAssertions
}

// Completes reports whether results complete a lesson.
func (p CompletionPolicy) Completes(results []assertion.Result) bool {
	if len(results) == 0 && p != VacuousPass {
		return false
	}
	return AllPassed(results)
}

func (p CompletionPolicy) String() string {
	switch p {
	case RequireAssertions:
		return "require_assertions"
	case VacuousPass:
		return "vacuous_pass"
	default:
		return "unknown"
	}
}
