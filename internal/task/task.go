// Package task defines the tasks a plan registers: one Kotlin compile task per
// subproject variant and the build-wide clean action.
package task

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/specialistvlad/buildplan/internal/compiler"
)

// Task kinds.
const (
	KindCompile = "compile"
	KindClean   = "clean"
)

// DefaultVariants are the build variants a subproject gets when none are
// declared.
var DefaultVariants = []string{"debug", "release"}

// Task is a registered unit of work. Path is unique within a plan, e.g.
// ":camera:compileDebugKotlin" or ":clean".
type Task struct {
	Path      string           `json:"path" yaml:"path"`
	Kind      string           `json:"kind" yaml:"kind"`
	Project   string           `json:"project,omitempty" yaml:"project,omitempty"`
	Variant   string           `json:"variant,omitempty" yaml:"variant,omitempty"`
	OutputDir string           `json:"output_dir" yaml:"output_dir"`
	Compiler  compiler.Options `json:"compiler" yaml:"compiler"`
}

// CompileName returns the compile task name of a variant ("compileDebugKotlin").
func CompileName(variant string) string {
	if variant == "" {
		return "compileKotlin"
	}
	r, size := utf8.DecodeRuneInString(variant)
	return "compile" + string(unicode.ToUpper(r)) + variant[size:] + "Kotlin"
}

// Path joins a project name and a task name into a task path.
func Path(project, name string) string {
	if project == "" {
		return ":" + name
	}
	return ":" + project + ":" + name
}

// NewCompile creates the compile task of one subproject variant. The options
// are copied so the task owns them.
func NewCompile(project, variant, outputDir string, opts compiler.Options) (Task, error) {
	if strings.TrimSpace(variant) == "" {
		return Task{}, fmt.Errorf("subproject %q declares an empty variant", project)
	}
	return Task{
		Path:      Path(project, CompileName(variant)),
		Kind:      KindCompile,
		Project:   project,
		Variant:   variant,
		OutputDir: outputDir,
		Compiler:  opts.Clone(),
	}, nil
}

// Registry keeps tasks in registration order.
type Registry struct {
	tasks []Task
	index map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds t. Paths must be unique.
func (r *Registry) Register(t Task) error {
	if _, dup := r.index[t.Path]; dup {
		return fmt.Errorf("task %s already registered", t.Path)
	}
	r.index[t.Path] = len(r.tasks)
	r.tasks = append(r.tasks, t)
	return nil
}

// Get returns the task registered under path.
func (r *Registry) Get(path string) (Task, bool) {
	i, ok := r.index[path]
	if !ok {
		return Task{}, false
	}
	return r.tasks[i], true
}

// All returns a copy of the registered tasks in registration order.
func (r *Registry) All() []Task {
	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// OfKind returns the registered tasks of one kind in registration order.
func (r *Registry) OfKind(kind string) []Task {
	var out []Task
	for _, t := range r.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}
