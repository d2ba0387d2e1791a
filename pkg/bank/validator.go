package bank

import (
	"fmt"
	"os"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/sandbox"
)

// ValidationError represents a validation issue found in a bank file.
type ValidationError struct {
	Section string // "modules", "lessons" or empty for file-level issues
	Field   string
	Message string
	Index   int // -1 if not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d].%s: %s", e.Section, e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateFile validates a bank file and returns all errors found.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{Field: "file", Message: err.Error(), Index: -1}}
	}
	return ValidateData(path, data)
}

// ValidateData validates the bank file contents data. The format is
// picked from name's extension.
func ValidateData(name string, data []byte) []ValidationError {
	file, err := decodeFile(name, data)
	if err != nil {
		return []ValidationError{{Field: "parse", Message: err.Error(), Index: -1}}
	}
	return Validate(file)
}

// Validate checks an already decoded bank file.
func Validate(file BankFile) []ValidationError {
	var errs []ValidationError

	if file.Version == "" {
		errs = append(errs, ValidationError{
			Field: "version", Message: "version is required", Index: -1,
		})
	}

	modules := make(map[string]bool)
	for i, m := range file.Modules {
		if m.ID == "" {
			errs = append(errs, ValidationError{
				Section: "modules", Field: "id", Message: "module ID is required", Index: i,
			})
		} else if modules[m.ID] {
			errs = append(errs, ValidationError{
				Section: "modules", Field: "id", Message: fmt.Sprintf("duplicate ID: %s", m.ID), Index: i,
			})
		} else {
			modules[m.ID] = true
		}
		if m.Title == "" {
			errs = append(errs, ValidationError{
				Section: "modules", Field: "title", Message: "module title is required", Index: i,
			})
		}
	}

	lessons := make(map[string]bool)
	for i, l := range file.Lessons {
		if l.ID == "" {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "id", Message: "lesson ID is required", Index: i,
			})
		} else if lessons[l.ID] {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "id", Message: fmt.Sprintf("duplicate ID: %s", l.ID), Index: i,
			})
		} else {
			lessons[l.ID] = true
		}
		if l.Title == "" {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "title", Message: "lesson title is required", Index: i,
			})
		}
		if l.ModuleID == "" {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "module_id", Message: "module ID is required", Index: i,
			})
		} else if !modules[l.ModuleID] {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "module_id",
				Message: fmt.Sprintf("unknown module: %s", l.ModuleID), Index: i,
			})
		}
		if len(l.ValidationTests) == 0 {
			errs = append(errs, ValidationError{
				Section: "lessons", Field: "validation_tests",
				Message: "lesson has no validation tests", Index: i,
			})
		}
		for j, def := range l.ValidationTests {
			if def.Description == "" {
				errs = append(errs, ValidationError{
					Section: "lessons", Field: fmt.Sprintf("validation_tests[%d].description", j),
					Message: "description is required", Index: i,
				})
			}
			field := fmt.Sprintf("validation_tests[%d]", j)
			for _, msg := range checkDefinition(def) {
				errs = append(errs, ValidationError{
					Section: "lessons", Field: field, Message: msg, Index: i,
				})
			}
		}
	}

	return errs
}

// checkDefinition reports expression assertions that cannot compile
// and composites without a usable list. Custom kinds are not checked.
func checkDefinition(def assertion.Definition) []string {
	switch def.EffectiveKind() {
	case assertion.KindExpression:
		if _, err := sandbox.CompileAssertion(def.Test); err != nil {
			return []string{"test does not compile: " + err.Message}
		}
	case assertion.KindAllPass, assertion.KindAnyPass:
		subs, err := assertion.SubDefinitions(def)
		if err != nil {
			return []string{err.Error()}
		}
		var msgs []string
		for k, sub := range subs {
			for _, msg := range checkDefinition(sub) {
				msgs = append(msgs, fmt.Sprintf("value[%d]: %s", k, msg))
			}
		}
		return msgs
	}
	return nil
}
