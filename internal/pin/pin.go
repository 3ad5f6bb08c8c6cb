// Package pin evaluates build plugin version pins and checks that the pinned
// versions are mutually compatible.
package pin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/repository"
)

// ExtraPrefix marks a requirement on an extra property instead of a plugin.
const ExtraPrefix = "extra."

// Requirement constrains the version of another pin or an extra property.
type Requirement struct {
	Target     string     `json:"target" yaml:"target"`
	Constraint Constraint `json:"constraint" yaml:"constraint"`
}

// Pin is a plugin fixed at one version.
type Pin struct {
	Group    string        `json:"group" yaml:"group"`
	Artifact string        `json:"artifact" yaml:"artifact"`
	Version  string        `json:"version" yaml:"version"`
	Requires []Requirement `json:"requires,omitempty" yaml:"requires,omitempty"`
	Source   string        `json:"source,omitempty" yaml:"source,omitempty"`
}

// Module returns "group:artifact".
func (p Pin) Module() string {
	return p.Group + ":" + p.Artifact
}

// Coordinate returns the fully qualified artifact coordinate.
func (p Pin) Coordinate() repository.Coordinate {
	return repository.Coordinate{Group: p.Group, Artifact: p.Artifact, Version: p.Version}
}

// Parse validates plugin declarations. Versions must already be evaluated
// (extra references are substituted by the loader). A version only has to be
// semantic when a requirement compares against it, so Maven qualifiers such
// as "1.0.0.RELEASE" are accepted on unconstrained pins.
func Parse(decls []*config.Plugin) ([]Pin, error) {
	const op = "pin-plugins"
	pins := make([]Pin, 0, len(decls))
	seen := make(map[string]string, len(decls))

	for _, d := range decls {
		group, artifact, ok := strings.Cut(strings.TrimSpace(d.Coordinate), ":")
		if !ok || group == "" || artifact == "" || strings.Contains(artifact, ":") {
			return nil, builderr.Configurationf(op, d.Coordinate, "plugin must be named group:artifact (%s)", d.Source)
		}
		module := group + ":" + artifact
		if prev, dup := seen[module]; dup {
			return nil, builderr.Configurationf(op, module, "plugin pinned twice (%s and %s)", prev, d.Source)
		}
		seen[module] = d.Source

		version := strings.TrimSpace(d.Version)
		if version == "" {
			return nil, builderr.Configurationf(op, module, "plugin has no version")
		}
		if strings.ContainsAny(version, " \t/\\:") {
			return nil, builderr.Configurationf(op, module, "plugin version %q contains whitespace or a path separator", version)
		}

		p := Pin{Group: group, Artifact: artifact, Version: version, Source: d.Source}

		targets := make([]string, 0, len(d.Requires))
		for target := range d.Requires {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			c, err := ParseConstraint(d.Requires[target])
			if err != nil {
				return nil, builderr.Configuration(op, module, err)
			}
			p.Requires = append(p.Requires, Requirement{Target: target, Constraint: c})
		}
		pins = append(pins, p)
	}
	return pins, nil
}

// CheckCompatibility verifies every requirement of every pin against the
// other pins and the extra properties.
func CheckCompatibility(pins []Pin, extra map[string]string) error {
	const op = "pin-compatibility"
	versions := make(map[string]string, len(pins))
	for _, p := range pins {
		versions[p.Module()] = p.Version
	}

	for _, p := range pins {
		for _, req := range p.Requires {
			var (
				version string
				ok      bool
			)
			if name, isExtra := strings.CutPrefix(req.Target, ExtraPrefix); isExtra {
				version, ok = extra[name]
			} else {
				version, ok = versions[req.Target]
			}
			if !ok {
				return builderr.Configurationf(op, p.Module(), "requirement on %q does not match any pin or extra property", req.Target)
			}

			allowed, err := req.Constraint.Allows(version)
			if err != nil {
				return builderr.Configuration(op, p.Module(), fmt.Errorf("%s cannot be checked against %q: %w", req.Target, req.Constraint.String(), err))
			}
			if !allowed {
				return builderr.Configurationf(op, p.Module(), "%s %s does not satisfy %q", req.Target, version, req.Constraint.String())
			}
		}
	}
	return nil
}
