package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/metrics"
)

// Resolution records where a coordinate was found.
type Resolution struct {
	Coordinate Coordinate `json:"coordinate" yaml:"coordinate"`
	Repository Ref        `json:"repository" yaml:"repository"`
}

// Resolver looks coordinates up in an ordered Set. Results are memoised per
// (set, coordinate) for the lifetime of the Resolver.
type Resolver struct {
	prober   Prober
	recorder metrics.Recorder

	mu    sync.Mutex
	cache map[string]Resolution
}

// NewResolver returns a Resolver. A nil recorder disables metrics.
func NewResolver(prober Prober, recorder metrics.Recorder) *Resolver {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Resolver{
		prober:   prober,
		recorder: recorder,
		cache:    make(map[string]Resolution),
	}
}

// Resolve walks set in order and returns the first repository that has c.
// Repositories after the first hit are not queried. A repository that cannot
// be reached is skipped; if no repository has c the failure is a resolution
// error carrying every per-repository error.
func (r *Resolver) Resolve(ctx context.Context, set Set, c Coordinate) (Resolution, error) {
	const op = "resolve"
	logger := ctxlog.FromContext(ctx).With("coordinate", c.String())

	key := cacheKey(set, c)
	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		logger.Debug("Resolution served from cache.", "repository", cached.Repository.Name)
		return cached, nil
	}

	if len(set) == 0 {
		return Resolution{}, builderr.Resolution(op, c.String(), errors.New("no repositories registered"))
	}

	var errs []error
	for _, repo := range set {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}

		found, err := r.prober.Has(ctx, repo, c)
		if err != nil {
			r.recorder.IncLookup(repo.Name, metrics.LookupError)
			logger.Warn("Repository lookup failed.", "repository", repo.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", repo.Name, err))
			continue
		}
		if !found {
			r.recorder.IncLookup(repo.Name, metrics.LookupMiss)
			logger.Debug("Coordinate not in repository.", "repository", repo.Name)
			continue
		}

		r.recorder.IncLookup(repo.Name, metrics.LookupHit)
		logger.Debug("Coordinate resolved.", "repository", repo.Name)
		res := Resolution{Coordinate: c, Repository: repo}
		r.mu.Lock()
		r.cache[key] = res
		r.mu.Unlock()
		return res, nil
	}

	cause := fmt.Errorf("not found in any of [%s]", strings.Join(set.Names(), ", "))
	if len(errs) > 0 {
		cause = errors.Join(append([]error{cause}, errs...)...)
	}
	return Resolution{}, builderr.Resolution(op, c.String(), cause)
}

// ResolveAll resolves coords in order and stops at the first failure.
func (r *Resolver) ResolveAll(ctx context.Context, set Set, coords []Coordinate) ([]Resolution, error) {
	out := make([]Resolution, 0, len(coords))
	for _, c := range coords {
		res, err := r.Resolve(ctx, set, c)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func cacheKey(set Set, c Coordinate) string {
	var sb strings.Builder
	for _, repo := range set {
		sb.WriteString(repo.URL)
		sb.WriteByte('|')
	}
	sb.WriteString(c.String())
	return sb.String()
}
