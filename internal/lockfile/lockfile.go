// Package lockfile persists where each plugin and dependency of a plan was
// resolved from, and renders plans for humans and tools.
package lockfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/plan"
	"github.com/specialistvlad/buildplan/internal/repository"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written to every lockfile. Read rejects other versions.
const FormatVersion = 1

// Lockfile is the on-disk record of a resolve run.
type Lockfile struct {
	Version      int     `yaml:"version"`
	Plugins      []Entry `yaml:"plugins"`
	Dependencies []Entry `yaml:"dependencies"`
}

// Entry pins one module to a version and the repository it came from.
type Entry struct {
	Module        string `yaml:"module"`
	Version       string `yaml:"version"`
	Repository    string `yaml:"repository"`
	RepositoryURL string `yaml:"repository_url"`
}

// New builds a lockfile from resolved coordinates. Entries are sorted by
// module so that the file does not depend on declaration order.
func New(resolved *plan.Resolved) *Lockfile {
	return &Lockfile{
		Version:      FormatVersion,
		Plugins:      entries(resolved.Plugins),
		Dependencies: entries(resolved.Dependencies),
	}
}

func entries(res []repository.Resolution) []Entry {
	out := make([]Entry, 0, len(res))
	for _, r := range res {
		out = append(out, Entry{
			Module:        r.Coordinate.Module(),
			Version:       r.Coordinate.Version,
			Repository:    r.Repository.Name,
			RepositoryURL: r.Repository.URL,
		})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := strings.Compare(a.Module, b.Module); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
	return out
}

// Encode writes lf as YAML.
func Encode(w io.Writer, lf *Lockfile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to encode lockfile: %w", err)
	}
	return enc.Close()
}

// Write stores lf at path. The file is replaced atomically.
func Write(path string, lf *Lockfile) error {
	const op = "write-lockfile"
	var buf bytes.Buffer
	if err := Encode(&buf, lf); err != nil {
		return builderr.Filesystem(op, path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return builderr.Filesystem(op, path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return builderr.Filesystem(op, path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return builderr.Filesystem(op, path, err)
	}
	if err := tmp.Close(); err != nil {
		return builderr.Filesystem(op, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return builderr.Filesystem(op, path, err)
	}
	return nil
}

// Read loads a lockfile written by Write.
func Read(path string) (*Lockfile, error) {
	const op = "read-lockfile"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, builderr.Filesystem(op, path, err)
	}

	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, builderr.Configuration(op, path, fmt.Errorf("invalid lockfile: %w", err))
	}
	if lf.Version != FormatVersion {
		return nil, builderr.Configurationf(op, path, "unsupported lockfile version %d", lf.Version)
	}
	return &lf, nil
}

// Diff lists entries whose locked version or repository differs between old
// and lf, as human readable lines. A module locked at several versions is
// compared version by version; a module locked at a single version on both
// sides is reported as one upgrade line.
func (lf *Lockfile) Diff(old *Lockfile) []string {
	var changes []string
	changes = append(changes, diffEntries("plugin", old.Plugins, lf.Plugins)...)
	changes = append(changes, diffEntries("dependency", old.Dependencies, lf.Dependencies)...)
	return changes
}

func (e Entry) key() string { return e.Module + "@" + e.Version }

func diffEntries(kind string, before, after []Entry) []string {
	prev := make(map[string]Entry, len(before))
	for _, e := range before {
		prev[e.key()] = e
	}

	// Exact module@version matches first, so that a module held at several
	// versions does not pair one version against another.
	added := make(map[string]bool)
	changed := make(map[string]string)
	for _, e := range after {
		p, ok := prev[e.key()]
		if !ok {
			added[e.key()] = true
			continue
		}
		if p.Repository != e.Repository {
			changed[e.key()] = fmt.Sprintf("~ %s %s %s from %s (was %s from %s)", kind, e.Module, e.Version, e.Repository, p.Version, p.Repository)
		}
		delete(prev, e.key())
	}

	unmatchedBefore := make(map[string][]Entry)
	for _, e := range before {
		if _, ok := prev[e.key()]; ok {
			unmatchedBefore[e.Module] = append(unmatchedBefore[e.Module], e)
		}
	}
	unmatchedAfter := make(map[string]int)
	for _, e := range after {
		if added[e.key()] {
			unmatchedAfter[e.Module]++
		}
	}

	var out []string
	for _, e := range after {
		if line, ok := changed[e.key()]; ok {
			out = append(out, line)
			continue
		}
		if !added[e.key()] {
			continue
		}
		if olds := unmatchedBefore[e.Module]; len(olds) == 1 && unmatchedAfter[e.Module] == 1 {
			p := olds[0]
			out = append(out, fmt.Sprintf("~ %s %s %s from %s (was %s from %s)", kind, e.Module, e.Version, e.Repository, p.Version, p.Repository))
			delete(prev, p.key())
			continue
		}
		out = append(out, fmt.Sprintf("+ %s %s %s from %s", kind, e.Module, e.Version, e.Repository))
	}
	for _, e := range before {
		if _, gone := prev[e.key()]; gone {
			out = append(out, fmt.Sprintf("- %s %s %s", kind, e.Module, e.Version))
		}
	}
	return out
}
