// Package lesson defines the course content model and the outcome
// of running a learner's submission against a lesson's exercise.
package lesson

import "digital.vasic.lessons/pkg/assertion"

// Module groups lessons into a unit of the course.
type Module struct {
	ID               string `json:"id" yaml:"id"`
	Title            string `json:"title" yaml:"title"`
	Description      string `json:"description" yaml:"description"`
	OrderIndex       int    `json:"order_index" yaml:"order_index"`
	Icon             string `json:"icon,omitempty" yaml:"icon,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes" yaml:"estimated_minutes"`
}

// Lesson pairs Markdown content with a coding exercise.
type Lesson struct {
	ID              string                 `json:"id" yaml:"id"`
	ModuleID        string                 `json:"module_id" yaml:"module_id"`
	Title           string                 `json:"title" yaml:"title"`
	Content         string                 `json:"content" yaml:"content"`
	OrderIndex      int                    `json:"order_index" yaml:"order_index"`
	StarterCode     string                 `json:"starter_code" yaml:"starter_code"`
	SolutionCode    string                 `json:"solution_code,omitempty" yaml:"solution_code"`
	ValidationTests []assertion.Definition `json:"validation_tests" yaml:"validation_tests"`
}

// Exercise is the coding challenge of one lesson.
type Exercise struct {
	ID         string
	Title      string
	Starter    string
	Solution   string
	Assertions []assertion.Definition
}

// Exercise returns the lesson's exercise. The assertion slice is
// copied so callers cannot alter the authored content.
func (l *Lesson) Exercise() Exercise {
	defs := make([]assertion.Definition, len(l.ValidationTests))
	copy(defs, l.ValidationTests)
	return Exercise{
		ID:         l.ID,
		Title:      l.Title,
		Starter:    l.StarterCode,
		Solution:   l.SolutionCode,
		Assertions: defs,
	}
}

// Public returns a copy of the lesson without its reference
// solution, suitable for learners.
func (l *Lesson) Public() Lesson {
	out := *l
	out.SolutionCode = ""
	out.ValidationTests = make([]assertion.Definition, len(l.ValidationTests))
	copy(out.ValidationTests, l.ValidationTests)
	return out
}
