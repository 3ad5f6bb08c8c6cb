package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/lockfile"
	"github.com/specialistvlad/buildplan/internal/metrics"
	"github.com/specialistvlad/buildplan/internal/plan"
	"github.com/specialistvlad/buildplan/internal/repository"
	"github.com/specialistvlad/buildplan/internal/watch"
)

// Load reads the build description.
func (a *App) Load(ctx context.Context) (*config.Description, error) {
	ctx = a.withLogger(ctx)
	desc, err := a.loader.Load(ctx, a.config.DescriptionPaths...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Description loaded.", "files", len(desc.Files), "module_root", desc.ModuleRoot)
	return desc, nil
}

// Plan loads the description and configures it.
func (a *App) Plan(ctx context.Context) (*plan.Plan, error) {
	desc, err := a.Load(ctx)
	if err != nil {
		a.metrics.IncPlanOutcome(metrics.Outcome(err))
		return nil, err
	}
	return plan.Configure(a.withLogger(ctx), desc, plan.Options{
		Compiler: a.compilerPolicy(),
		Recorder: a.metrics,
	})
}

// Order returns the subproject evaluation order.
func (a *App) Order(ctx context.Context) ([]string, error) {
	p, err := a.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return p.Order, nil
}

// Resolve configures the build and resolves every plugin and dependency. When
// lockPath is set the result is written there; the returned lines describe
// how it differs from the previous lockfile, if any.
func (a *App) Resolve(ctx context.Context, lockPath string) (*lockfile.Lockfile, []string, error) {
	p, err := a.Plan(ctx)
	if err != nil {
		return nil, nil, err
	}

	ctx = a.withLogger(ctx)
	resolver := repository.NewResolver(a.prober, a.metrics)
	resolved, err := p.Resolve(ctx, resolver)
	if err != nil {
		return nil, nil, err
	}
	lf := lockfile.New(resolved)
	a.logger.Info("Artifacts resolved.", "plugins", len(lf.Plugins), "dependencies", len(lf.Dependencies))

	if lockPath == "" {
		return lf, nil, nil
	}

	var changes []string
	if previous, err := lockfile.Read(lockPath); err == nil {
		changes = lf.Diff(previous)
	} else {
		a.logger.Debug("No previous lockfile to compare with.", "path", lockPath, "error", err)
	}
	if err := lockfile.Write(lockPath, lf); err != nil {
		return nil, nil, err
	}
	a.logger.Info("Lockfile written.", "path", lockPath, "changes", len(changes))
	return lf, changes, nil
}

// Clean removes the relocated output root. Running it when the root does not
// exist succeeds.
func (a *App) Clean(ctx context.Context) (root string, err error) {
	defer func() { a.metrics.IncCleanOutcome(metrics.Outcome(err)) }()

	p, err := a.Plan(ctx)
	if err != nil {
		return "", err
	}
	if err := p.Clean.Run(a.withLogger(ctx)); err != nil {
		return "", err
	}
	return p.Clean.Root, nil
}

// Watch calls emit with a fresh plan (or the configuration error) once at
// start and again after every change to the description, until ctx is done.
func (a *App) Watch(ctx context.Context, emit func(*plan.Plan, error)) error {
	ctx = a.withLogger(ctx)
	replan := func(ctx context.Context) {
		p, err := a.Plan(ctx)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Re-planning failed.", "error", err)
		}
		emit(p, err)
	}

	w, err := watch.New(a.config.DescriptionPaths, ".hcl", watch.DefaultDebounce, replan)
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	replan(ctx)
	return w.Run(ctx)
}
