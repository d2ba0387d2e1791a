package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.lessons/pkg/assertion"
	"digital.vasic.lessons/pkg/lesson"
)

func fieldsOf(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func TestValidateFile_Valid(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "valid.json", sampleFile())
	assert.Empty(t, ValidateFile(path))
}

func TestValidateFile_MissingVersion(t *testing.T) {
	file := sampleFile()
	file.Version = ""
	errs := ValidateFile(writeJSON(t, t.TempDir(), "bank.json", file))
	require.Len(t, errs, 1)
	assert.Equal(t, "version: version is required", errs[0].Error())
}

func TestValidateFile_DuplicateAndMissing(t *testing.T) {
	file := sampleFile()
	file.Modules = append(file.Modules, lesson.Module{ID: "m-1", Title: "dup"})
	file.Lessons = append(file.Lessons,
		lesson.Lesson{ID: "l-1", ModuleID: "m-1", Title: "dup",
			ValidationTests: []assertion.Definition{{Description: "d", Test: "true"}}},
		lesson.Lesson{ModuleID: "m-9",
			ValidationTests: []assertion.Definition{{Test: "true"}}},
	)

	errs := fieldsOf(ValidateFile(writeJSON(t, t.TempDir(), "bank.json", file)))
	assert.Contains(t, errs, "modules[2].id: duplicate ID: m-1")
	assert.Contains(t, errs, "lessons[3].id: duplicate ID: l-1")
	assert.Contains(t, errs, "lessons[4].id: lesson ID is required")
	assert.Contains(t, errs, "lessons[4].title: lesson title is required")
	assert.Contains(t, errs, "lessons[4].module_id: unknown module: m-9")
	assert.Contains(t, errs, "lessons[4].validation_tests[0].description: description is required")
}

func TestValidateFile_NoValidationTests(t *testing.T) {
	file := sampleFile()
	file.Lessons[1].ValidationTests = nil
	errs := ValidateFile(writeJSON(t, t.TempDir(), "bank.json", file))
	require.Len(t, errs, 1)
	assert.Equal(t, "lessons[1].validation_tests: lesson has no validation tests", errs[0].Error())
}

func TestValidate_AssertionsMustCompile(t *testing.T) {
	file := sampleFile()
	file.Lessons[0].ValidationTests = []assertion.Definition{
		{Description: "trailing comment", Test: "f() === 1; // one"},
		{Description: "empty"},
		{Description: "composite", Kind: assertion.KindAllPass, Value: []any{"not_empty", "a ==="}},
		{Description: "no list", Kind: assertion.KindAnyPass},
		{Description: "fine", Test: "const r = f();\nreturn r === 1;"},
		{Description: "custom", Kind: "custom_kind"},
	}

	errs := Validate(file)
	require.Len(t, errs, 4)
	assert.Equal(t, "validation_tests[0]", errs[0].Field)
	assert.Contains(t, errs[0].Message, "test does not compile")
	assert.Equal(t, "lessons[0].validation_tests[1]: test does not compile: assertion expression is empty", errs[1].Error())
	assert.Contains(t, errs[2].Message, "value[1]: test does not compile")
	assert.Contains(t, errs[3].Message, "any_pass requires a list of assertions")
}

func TestValidateFile_Unreadable(t *testing.T) {
	errs := ValidateFile("/nonexistent/bank.yaml")
	require.Len(t, errs, 1)
	assert.Equal(t, "file", errs[0].Field)
	assert.Equal(t, -1, errs[0].Index)
}

func TestValidateFile_Unparseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lessons: {broken"), 0644))
	errs := ValidateFile(path)
	require.Len(t, errs, 1)
	assert.Equal(t, "parse", errs[0].Field)
}
