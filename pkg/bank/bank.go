// Package bank loads course content (modules and lessons) from bank
// files and answers ordered catalog queries.
package bank

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"digital.vasic.lessons/pkg/lesson"
)

//go:embed seed/course.yaml
var seedCourse []byte

// SeedSource is the source name recorded for the embedded course.
const SeedSource = "embedded:seed/course.yaml"

// Bank manages modules and lessons loaded from files.
type Bank struct {
	mu      sync.RWMutex
	modules map[string]*lesson.Module
	lessons map[string]*lesson.Lesson
	sources []string
}

// New creates a new empty Bank.
func New() *Bank {
	return &Bank{
		modules: make(map[string]*lesson.Module),
		lessons: make(map[string]*lesson.Lesson),
	}
}

// LoadFile loads a YAML or JSON bank file. Entries with an ID
// already present replace the earlier definition.
func (b *Bank) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read bank file %s: %w", path, err)
	}
	return b.load(path, data)
}

// LoadSeed loads the embedded seed course.
func (b *Bank) LoadSeed() error {
	return b.load(SeedSource, seedCourse)
}

// SeedData returns a copy of the embedded seed course file.
func SeedData() []byte {
	out := make([]byte, len(seedCourse))
	copy(out, seedCourse)
	return out
}

func (b *Bank) load(source string, data []byte) error {
	name := source
	if source == SeedSource {
		name = "course.yaml"
	}
	file, err := decodeFile(name, data)
	if err != nil {
		return err
	}

	for i, m := range file.Modules {
		if m.ID == "" {
			return fmt.Errorf("module at index %d in %s has no ID", i, source)
		}
	}
	for i, l := range file.Lessons {
		if l.ID == "" {
			return fmt.Errorf("lesson at index %d in %s has no ID", i, source)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range file.Modules {
		m := file.Modules[i]
		b.modules[m.ID] = &m
	}
	for i := range file.Lessons {
		l := file.Lessons[i]
		b.lessons[l.ID] = &l
	}
	b.sources = append(b.sources, source)
	return nil
}

// LoadDir loads all .yaml, .yml and .json files from a directory.
// Subdirectories are not visited.
func (b *Bank) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read bank directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !supportedExt(entry.Name()) {
			continue
		}
		if err := b.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Lesson retrieves a lesson by ID.
func (b *Bank) Lesson(id string) (*lesson.Lesson, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.lessons[id]
	return l, ok
}

// Module retrieves a module by ID.
func (b *Bank) Module(id string) (*lesson.Module, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.modules[id]
	return m, ok
}

// Modules returns all modules ordered by order index.
func (b *Bank) Modules() []*lesson.Module {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*lesson.Module, 0, len(b.modules))
	for _, m := range b.modules {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OrderIndex != result[j].OrderIndex {
			return result[i].OrderIndex < result[j].OrderIndex
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Lessons returns the lessons of a module ordered by order index.
func (b *Bank) Lessons(moduleID string) []*lesson.Lesson {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]*lesson.Lesson, 0)
	for _, l := range b.lessons {
		if l.ModuleID == moduleID {
			result = append(result, l)
		}
	}
	sortLessons(result)
	return result
}

// AllLessons returns every lesson ordered by module, then by lesson
// order index. Lessons of unknown modules come last.
func (b *Bank) AllLessons() []*lesson.Lesson {
	modules := b.Modules()
	rank := make(map[string]int, len(modules))
	for i, m := range modules {
		rank[m.ID] = i
	}

	b.mu.RLock()
	result := make([]*lesson.Lesson, 0, len(b.lessons))
	for _, l := range b.lessons {
		result = append(result, l)
	}
	b.mu.RUnlock()

	moduleRank := func(l *lesson.Lesson) int {
		if r, ok := rank[l.ModuleID]; ok {
			return r
		}
		return len(modules)
	}
	sort.SliceStable(result, func(i, j int) bool {
		ri, rj := moduleRank(result[i]), moduleRank(result[j])
		if ri != rj {
			return ri < rj
		}
		if result[i].ModuleID != result[j].ModuleID {
			return result[i].ModuleID < result[j].ModuleID
		}
		return lessonLess(result[i], result[j])
	})
	return result
}

func sortLessons(ls []*lesson.Lesson) {
	sort.Slice(ls, func(i, j int) bool { return lessonLess(ls[i], ls[j]) })
}

func lessonLess(a, b *lesson.Lesson) bool {
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	return a.ID < b.ID
}

// Count returns the number of loaded lessons.
func (b *Bank) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lessons)
}

// Sources returns the list of loaded sources.
func (b *Bank) Sources() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.sources))
	copy(result, b.sources)
	return result
}
