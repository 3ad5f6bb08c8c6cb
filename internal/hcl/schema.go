package hcl

import "github.com/hashicorp/hcl/v2"

// extraRoot is decoded in the first pass. Everything that is not an extra
// block stays in Remain.
type extraRoot struct {
	Extra  []*extraBlock `hcl:"extra,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type extraBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// fileRoot holds the remaining top-level content of one file.
type fileRoot struct {
	BuildDir    *string             `hcl:"build_dir,optional"`
	Buildscript []*buildscriptBlock `hcl:"buildscript,block"`
	AllProjects []*allProjectsBlock `hcl:"allprojects,block"`
	Subprojects []*subprojectsBlock `hcl:"subprojects,block"`
	Subproject  []*subprojectBlock  `hcl:"subproject,block"`
}

type buildscriptBlock struct {
	Repositories []*repositoryBlock `hcl:"repository,block"`
	Plugins      []*pluginBlock     `hcl:"plugin,block"`
}

type repositoryBlock struct {
	Name string  `hcl:"name,label"`
	URL  *string `hcl:"url,optional"`
}

type pluginBlock struct {
	Coordinate string            `hcl:"coordinate,label"`
	Version    string            `hcl:"version"`
	Requires   map[string]string `hcl:"requires,optional"`
}

type allProjectsBlock struct {
	Repositories []*repositoryBlock `hcl:"repository,block"`
	Compiler     []*compilerBlock   `hcl:"compiler,block"`
}

type compilerBlock struct {
	JVMTarget   *string           `hcl:"jvm_target,optional"`
	Incremental *bool             `hcl:"incremental,optional"`
	Flags       map[string]string `hcl:"flags,optional"`
}

// subprojectsBlock holds defaults for every subproject.
type subprojectsBlock struct {
	EvaluationDependsOn []string `hcl:"evaluation_depends_on,optional"`
	Variants            []string `hcl:"variants,optional"`
}

type subprojectBlock struct {
	Name                string   `hcl:"name,label"`
	EvaluationDependsOn []string `hcl:"evaluation_depends_on,optional"`
	Variants            []string `hcl:"variants,optional"`
	Dependencies        []string `hcl:"dependencies,optional"`
}
