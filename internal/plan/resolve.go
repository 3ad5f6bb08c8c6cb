package plan

import (
	"context"

	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/repository"
)

// Resolved lists where each plugin and library of a plan was found.
type Resolved struct {
	Plugins      []repository.Resolution
	Dependencies []repository.Resolution
}

// Resolve looks every plugin up in the buildscript repositories and every
// library dependency in the project repositories. The first coordinate that
// cannot be resolved aborts the run with a resolution error.
func (p *Plan) Resolve(ctx context.Context, r *repository.Resolver) (*Resolved, error) {
	logger := ctxlog.FromContext(ctx)

	plugins := make([]repository.Coordinate, len(p.Plugins))
	for i, pn := range p.Plugins {
		plugins[i] = pn.Coordinate()
	}
	pluginRes, err := r.ResolveAll(ctx, p.BuildscriptRepositories, plugins)
	if err != nil {
		return nil, err
	}
	logger.Debug("Plugins resolved.", "count", len(pluginRes))

	depRes, err := r.ResolveAll(ctx, p.Repositories, p.Dependencies())
	if err != nil {
		return nil, err
	}
	logger.Debug("Dependencies resolved.", "count", len(depRes))

	return &Resolved{Plugins: pluginRes, Dependencies: depRes}, nil
}

// Dependencies returns the distinct library coordinates of all subprojects in
// evaluation order.
func (p *Plan) Dependencies() []repository.Coordinate {
	seen := make(map[repository.Coordinate]bool)
	var out []repository.Coordinate
	for _, s := range p.Subprojects {
		for _, c := range s.Dependencies {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
