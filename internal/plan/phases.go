package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/compiler"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/dag"
	"github.com/specialistvlad/buildplan/internal/layout"
	"github.com/specialistvlad/buildplan/internal/pin"
	"github.com/specialistvlad/buildplan/internal/repository"
	"github.com/specialistvlad/buildplan/internal/task"
)

// configurator carries the results of completed phases.
type configurator struct {
	desc *config.Description
	opts Options

	buildscriptRepos repository.Set
	repos            repository.Set
	pins             []pin.Pin
	compiler         compiler.Options
	layout           layout.Layout
	graph            *dag.Graph
	order            []string
	subprojects      []Subproject
	tasks            *task.Registry
	clean            *task.Clean
}

func (c *configurator) registerRepositories(ctx context.Context) error {
	var err error
	if c.buildscriptRepos, err = repository.NewSet(repository.ScopeBuildscript, c.desc.Buildscript.Repositories); err != nil {
		return err
	}
	if c.repos, err = repository.NewSet(repository.ScopeAllProjects, c.desc.AllProjects.Repositories); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Repositories registered.",
		"buildscript", c.buildscriptRepos.Names(), "allprojects", c.repos.Names())
	return nil
}

func (c *configurator) pinPlugins(ctx context.Context) error {
	pins, err := pin.Parse(c.desc.Buildscript.Plugins)
	if err != nil {
		return err
	}
	if err := pin.CheckCompatibility(pins, c.desc.Extra); err != nil {
		return err
	}
	c.pins = pins
	return nil
}

func (c *configurator) applyCompilerOptions(ctx context.Context) error {
	opts, err := compiler.Validate(c.desc.AllProjects.Compiler, c.opts.Compiler)
	if err != nil {
		return err
	}
	c.compiler = opts
	ctxlog.FromContext(ctx).Debug("Compiler options validated.", "jvm_target", opts.JVMTarget, "incremental", opts.Incremental)
	return nil
}

func (c *configurator) relocateOutputRoot(ctx context.Context) error {
	names := make([]string, len(c.desc.Subprojects))
	for i, s := range c.desc.Subprojects {
		names[i] = s.Name
	}
	l, err := layout.New(c.desc.ModuleRoot, c.desc.BuildDir, names)
	if err != nil {
		return err
	}
	c.layout = l
	ctxlog.FromContext(ctx).Debug("Output root relocated.", "root", l.Root)
	return nil
}

// orderSubprojects builds the evaluation dependency graph. The defaults apply
// to every subproject except the target itself; a subproject that names
// itself explicitly is an error.
func (c *configurator) orderSubprojects(ctx context.Context) error {
	const op = "evaluation-order"
	g := dag.New()
	for _, s := range c.desc.Subprojects {
		g.AddNode(s.Name)
	}

	link := func(dependency, dependent string, explicit bool) error {
		if !g.HasNode(dependency) {
			return builderr.Configurationf(op, dependent, "unresolved reference to subproject %q", dependency)
		}
		if dependency == dependent {
			if explicit {
				return builderr.Configurationf(op, dependent, "subproject cannot depend on itself")
			}
			return nil
		}
		if err := g.AddEdge(dependency, dependent); err != nil {
			return builderr.Configuration(op, dependent, err)
		}
		return nil
	}

	for _, s := range c.desc.Subprojects {
		for _, ref := range c.desc.Defaults.EvaluationDependsOn {
			if err := link(config.ProjectName(ref), s.Name, false); err != nil {
				return err
			}
		}
		for _, ref := range s.EvaluationDependsOn {
			if err := link(config.ProjectName(ref), s.Name, true); err != nil {
				return err
			}
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return builderr.Configuration(op, cycle.Path[0], err)
		}
		return builderr.Configuration(op, "", err)
	}

	c.graph = g
	c.order = order
	ctxlog.FromContext(ctx).Debug("Evaluation order computed.", "order", order)
	return nil
}

// configureSubprojects walks the evaluation order so that every subproject is
// configured after the ones it depends on.
func (c *configurator) configureSubprojects(ctx context.Context) error {
	const op = "configure-subprojects"
	byName := make(map[string]*config.Subproject, len(c.desc.Subprojects))
	for _, s := range c.desc.Subprojects {
		byName[s.Name] = s
	}

	c.tasks = task.NewRegistry()
	c.subprojects = make([]Subproject, 0, len(c.order))
	for _, name := range c.order {
		decl := byName[name]
		logger := ctxlog.FromContext(ctx).With("subproject", name)

		deps, err := c.graph.Dependencies(name)
		if err != nil {
			return builderr.Configuration(op, name, err)
		}

		variants := decl.Variants
		if len(variants) == 0 {
			variants = c.desc.Defaults.Variants
		}
		if len(variants) == 0 {
			variants = task.DefaultVariants
		}

		coords := make([]repository.Coordinate, 0, len(decl.Dependencies))
		for _, raw := range decl.Dependencies {
			coord, err := repository.ParseCoordinate(raw)
			if err != nil {
				return builderr.Configuration(op, name, err)
			}
			coords = append(coords, coord)
		}

		outDir, _ := c.layout.Dir(name)
		for _, variant := range variants {
			t, err := task.NewCompile(name, variant, outDir, c.compiler)
			if err != nil {
				return builderr.Configuration(op, name, err)
			}
			if err := c.tasks.Register(t); err != nil {
				return builderr.Configuration(op, name, fmt.Errorf("variant %q: %w", variant, err))
			}
		}

		c.subprojects = append(c.subprojects, Subproject{
			Name:           name,
			EvaluatedAfter: deps,
			Variants:       slices.Clone(variants),
			Dependencies:   coords,
			OutputDir:      outDir,
		})
		logger.Debug("Subproject configured.", "variants", variants)
	}
	return nil
}

func (c *configurator) registerClean(ctx context.Context) error {
	clean, err := task.NewClean(c.layout.Root)
	if err != nil {
		return err
	}
	if err := c.tasks.Register(clean.Task()); err != nil {
		return builderr.Configuration("register-clean", clean.Root, err)
	}
	c.clean = clean
	return nil
}

func (c *configurator) plan() *Plan {
	return &Plan{
		ModuleRoot:              c.layout.ModuleRoot,
		BuildscriptRepositories: c.buildscriptRepos,
		Repositories:            c.repos,
		Extra:                   maps.Clone(c.desc.Extra),
		Plugins:                 c.pins,
		Compiler:                c.compiler,
		Layout:                  c.layout,
		Order:                   c.order,
		Subprojects:             c.subprojects,
		Tasks:                   c.tasks.All(),
		Clean:                   c.clean,
		registry:                c.tasks,
	}
}
