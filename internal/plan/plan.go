// Package plan implements the build configurator: it turns a loaded
// description into an immutable Plan.
//
// Configuration runs as a fixed sequence of phases. Each phase reads only the
// results of the phases before it, and the Plan is assembled once all of them
// have succeeded:
//
//  1. register repositories
//  2. pin plugins and check their compatibility
//  3. validate the uniform compiler options
//  4. relocate the output root
//  5. order subprojects by their evaluation dependencies
//  6. configure subprojects in that order
//  7. register the clean action
package plan

import (
	"context"
	"time"

	"github.com/specialistvlad/buildplan/internal/compiler"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/layout"
	"github.com/specialistvlad/buildplan/internal/metrics"
	"github.com/specialistvlad/buildplan/internal/pin"
	"github.com/specialistvlad/buildplan/internal/repository"
	"github.com/specialistvlad/buildplan/internal/task"
)

// Plan is the configured build. It is computed once per invocation and must
// not be modified after Configure returns it.
type Plan struct {
	ModuleRoot string `json:"module_root" yaml:"module_root"`

	BuildscriptRepositories repository.Set `json:"buildscript_repositories" yaml:"buildscript_repositories"`
	Repositories            repository.Set `json:"repositories" yaml:"repositories"`

	Extra   map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
	Plugins []pin.Pin         `json:"plugins" yaml:"plugins"`

	Compiler compiler.Options `json:"compiler" yaml:"compiler"`
	Layout   layout.Layout    `json:"layout" yaml:"layout"`

	// Order is the evaluation order of subprojects.
	Order       []string     `json:"order" yaml:"order"`
	Subprojects []Subproject `json:"subprojects" yaml:"subprojects"`
	Tasks       []task.Task  `json:"tasks" yaml:"tasks"`

	Clean *task.Clean `json:"-" yaml:"-"`

	registry *task.Registry
}

// Subproject is a configured subproject.
type Subproject struct {
	Name string `json:"name" yaml:"name"`
	// EvaluatedAfter lists the subprojects that must be evaluated first.
	EvaluatedAfter []string                `json:"evaluated_after,omitempty" yaml:"evaluated_after,omitempty"`
	Variants       []string                `json:"variants" yaml:"variants"`
	Dependencies   []repository.Coordinate `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	OutputDir      string                  `json:"output_dir" yaml:"output_dir"`
}

// Options tunes Configure.
type Options struct {
	Compiler compiler.Policy
	Recorder metrics.Recorder
}

// Configure runs every configuration phase over desc. Any failure aborts
// configuration; no partial plan is returned.
func Configure(ctx context.Context, desc *config.Description, opts Options) (p *Plan, err error) {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	start := time.Now()
	defer func() {
		recorder.ObservePlanDuration(time.Since(start))
		recorder.IncPlanOutcome(metrics.Outcome(err))
	}()

	ctx, logger := ctxlog.With(ctx, "module_root", desc.ModuleRoot)
	logger.Debug("Configuring build.", "files", desc.Files)

	c := &configurator{desc: desc, opts: opts}
	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"register-repositories", c.registerRepositories},
		{"pin-plugins", c.pinPlugins},
		{"compiler-options", c.applyCompilerOptions},
		{"relocate-output-root", c.relocateOutputRoot},
		{"evaluation-order", c.orderSubprojects},
		{"configure-subprojects", c.configureSubprojects},
		{"register-clean", c.registerClean},
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := phase.run(ctx); err != nil {
			logger.Debug("Configuration phase failed.", "phase", phase.name, "error", err)
			return nil, err
		}
		logger.Debug("Configuration phase complete.", "phase", phase.name)
	}

	p = c.plan()
	logger.Info("Build configured.", "subprojects", len(p.Subprojects), "compile_tasks", len(p.CompileTasks()), "tasks", len(p.Tasks))
	return p, nil
}

// Task returns the task registered under path.
func (p *Plan) Task(path string) (task.Task, bool) {
	if p.registry == nil {
		return task.Task{}, false
	}
	return p.registry.Get(path)
}

// CompileTasks returns the compile tasks of every subproject in evaluation
// order.
func (p *Plan) CompileTasks() []task.Task {
	if p.registry == nil {
		return nil
	}
	return p.registry.OfKind(task.KindCompile)
}

// Subproject returns the configured subproject called name.
func (p *Plan) Subproject(name string) (Subproject, bool) {
	for _, s := range p.Subprojects {
		if s.Name == name {
			return s, true
		}
	}
	return Subproject{}, false
}
