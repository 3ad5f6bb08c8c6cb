package config

import "strings"

// DefaultBuildDir is the output root used when a description does not set
// build_dir. It is relative to the module root.
const DefaultBuildDir = "../build"

// Description is the unified, format-agnostic representation of a build
// description.
type Description struct {
	// Files lists the source files the description was read from.
	Files []string
	// ModuleRoot is the absolute directory relative paths are anchored to.
	ModuleRoot string
	// BuildDir is the raw output root, relative to ModuleRoot unless absolute.
	BuildDir string

	// Extra holds the buildscript's extra properties (e.g. kotlin_version).
	Extra map[string]string

	Buildscript Buildscript
	AllProjects AllProjects
	Defaults    SubprojectDefaults
	Subprojects []*Subproject
}

// Buildscript groups what is needed to resolve the build itself.
type Buildscript struct {
	Repositories []*Repository
	Plugins      []*Plugin
}

// AllProjects groups settings applied to every project of the build.
type AllProjects struct {
	Repositories []*Repository
	Compiler     *Compiler
}

// SubprojectDefaults is applied to every subproject before its own block.
type SubprojectDefaults struct {
	EvaluationDependsOn []string
	Variants            []string
}

// Repository is a named source of artifacts. URL is empty for well-known
// registries referenced only by name.
type Repository struct {
	Name   string
	URL    string
	Source string
}

// Plugin is a build-time plugin pin.
type Plugin struct {
	// Coordinate is "group:artifact".
	Coordinate string
	Version    string
	// Requires maps another coordinate (or "extra.<name>") to a version
	// constraint such as ">= 1.9.0".
	Requires map[string]string
	Source   string
}

// Compiler is the option set applied to every compilation task.
type Compiler struct {
	JVMTarget string
	// Incremental is nil when the description leaves the policy unset.
	Incremental *bool
	Flags       map[string]string
	Source      string
}

// Subproject is an independently buildable unit.
type Subproject struct {
	Name                string
	EvaluationDependsOn []string
	Variants            []string
	// Dependencies are "group:artifact:version" library coordinates.
	Dependencies []string
	Source       string
}

// ProjectName normalises a project reference: Gradle style paths such as
// ":app" and plain names such as "app" refer to the same subproject.
func ProjectName(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), ":")
}
