// Package layout computes where build outputs go.
//
// The output root is shared by the whole build and sits outside the module
// (by default "../build" relative to the module root). Each subproject writes
// into its own directory directly below the root.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
)

// Layout is the immutable directory layout of a build.
type Layout struct {
	ModuleRoot string            `json:"module_root" yaml:"module_root"`
	Root       string            `json:"root" yaml:"root"`
	Dirs       map[string]string `json:"dirs" yaml:"dirs"`
}

// New relocates the output root and assigns one directory per subproject.
// moduleRoot must be absolute; buildDir is relative to it unless absolute
// itself, and defaults to config.DefaultBuildDir.
func New(moduleRoot, buildDir string, names []string) (Layout, error) {
	const op = "relocate-output-root"
	if !filepath.IsAbs(moduleRoot) {
		return Layout{}, builderr.Configurationf(op, moduleRoot, "module root must be an absolute path")
	}
	moduleRoot = filepath.Clean(moduleRoot)

	if strings.TrimSpace(buildDir) == "" {
		buildDir = config.DefaultBuildDir
	}
	root := buildDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(moduleRoot, filepath.FromSlash(root))
	}
	root = filepath.Clean(root)
	if root == moduleRoot {
		return Layout{}, builderr.Configurationf(op, buildDir, "output root must not be the module root")
	}
	if contains(root, moduleRoot) {
		return Layout{}, builderr.Configurationf(op, buildDir, "output root %s contains the module root %s", root, moduleRoot)
	}

	l := Layout{ModuleRoot: moduleRoot, Root: root, Dirs: make(map[string]string, len(names))}
	owners := make(map[string]string, len(names))
	for _, name := range names {
		if err := validName(name); err != nil {
			return Layout{}, builderr.Configuration(op, name, err)
		}
		dir := filepath.Join(root, name)
		if other, taken := owners[dir]; taken {
			return Layout{}, builderr.Configurationf(op, name, "output directory %s already assigned to %s", dir, other)
		}
		owners[dir] = name
		l.Dirs[name] = dir
	}
	return l, nil
}

// Dir returns the output directory of a subproject.
func (l Layout) Dir(name string) (string, bool) {
	dir, ok := l.Dirs[name]
	return dir, ok
}

// contains reports whether dir is an ancestor of path.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func validName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("subproject name is empty")
	case name == "." || name == "..":
		return fmt.Errorf("subproject name %q is not a directory name", name)
	case strings.ContainsAny(name, `/\:`):
		return fmt.Errorf("subproject name %q contains a path separator", name)
	}
	return nil
}
