// Package repository models the ordered artifact sources of a build and
// resolves coordinates against them.
//
// Declaration order is resolution precedence: a coordinate is looked up in
// each repository in turn and the first one that has it wins. Later
// repositories are never consulted for that coordinate.
package repository

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
)

// Registries that may be referenced by name alone.
var WellKnown = map[string]string{
	"google":               "https://dl.google.com/dl/android/maven2",
	"maven_central":        "https://repo.maven.apache.org/maven2",
	"gradle_plugin_portal": "https://plugins.gradle.org/m2",
}

// Scopes a Set may be registered for.
const (
	ScopeBuildscript = "buildscript"
	ScopeAllProjects = "allprojects"
)

// Ref is a named repository location.
type Ref struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

func (r Ref) String() string {
	return r.Name + " (" + r.URL + ")"
}

// Set is an ordered list of repositories; index 0 has the highest precedence.
type Set []Ref

// Names returns the repository names in precedence order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, r := range s {
		names[i] = r.Name
	}
	return names
}

// NewSet validates the repository declarations of one scope and returns them
// in declaration order.
func NewSet(scope string, decls []*config.Repository) (Set, error) {
	op := "register-repositories"
	set := make(Set, 0, len(decls))
	seen := make(map[string]string, len(decls))

	for _, d := range decls {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, builderr.Configurationf(op, scope, "repository without a name at %s", d.Source)
		}
		if prev, dup := seen[name]; dup {
			return nil, builderr.Configurationf(op, scope+"."+name, "repository declared twice (%s and %s)", prev, d.Source)
		}
		seen[name] = d.Source

		raw := strings.TrimSpace(d.URL)
		if raw == "" {
			known, ok := WellKnown[name]
			if !ok {
				return nil, builderr.Configurationf(op, scope+"."+name, "repository has no url and is not a well-known registry")
			}
			raw = known
		}

		normalized, err := normalizeURL(raw)
		if err != nil {
			return nil, builderr.Configuration(op, scope+"."+name, err)
		}
		set = append(set, Ref{Name: name, URL: normalized})
	}
	return set, nil
}

func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid repository url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return "", fmt.Errorf("repository url %q has no host", raw)
		}
	case "file":
		if u.Path == "" {
			return "", fmt.Errorf("repository url %q has no path", raw)
		}
	default:
		return "", fmt.Errorf("repository url %q: unsupported scheme %q", raw, u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
