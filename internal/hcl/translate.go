// This file translates the decoded HCL schema structs into the
// format-agnostic description defined in the config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
)

// merger accumulates the content of several files. Singleton settings may be
// declared in one place only.
type merger struct {
	desc *config.Description

	buildDirFrom    string
	buildscriptFrom string
	allProjectsFrom string
	subprojectsFrom string
	subprojectFrom  map[string]string
}

func newMerger(moduleRoot string, files []string, extras map[string]string) *merger {
	return &merger{
		desc: &config.Description{
			Files:      files,
			ModuleRoot: moduleRoot,
			BuildDir:   config.DefaultBuildDir,
			Extra:      extras,
		},
		subprojectFrom: make(map[string]string),
	}
}

func (m *merger) description() *config.Description {
	return m.desc
}

func (m *merger) merge(ctx context.Context, file string, root *fileRoot) error {
	logger := ctxlog.FromContext(ctx).With("file", file)

	if root.BuildDir != nil {
		if err := claim(&m.buildDirFrom, "build_dir", file); err != nil {
			return err
		}
		m.desc.BuildDir = *root.BuildDir
	}

	if len(root.Buildscript) > 0 {
		if err := claimOnce(&m.buildscriptFrom, "buildscript", file, len(root.Buildscript)); err != nil {
			return err
		}
		bs := root.Buildscript[0]
		m.desc.Buildscript.Repositories = translateRepositories(bs.Repositories, file)
		for _, p := range bs.Plugins {
			m.desc.Buildscript.Plugins = append(m.desc.Buildscript.Plugins, &config.Plugin{
				Coordinate: p.Coordinate,
				Version:    p.Version,
				Requires:   p.Requires,
				Source:     file,
			})
		}
	}

	if len(root.AllProjects) > 0 {
		if err := claimOnce(&m.allProjectsFrom, "allprojects", file, len(root.AllProjects)); err != nil {
			return err
		}
		ap := root.AllProjects[0]
		m.desc.AllProjects.Repositories = translateRepositories(ap.Repositories, file)
		switch len(ap.Compiler) {
		case 0:
		case 1:
			m.desc.AllProjects.Compiler = translateCompiler(ap.Compiler[0], file)
		default:
			return builderr.Configurationf(opLoad, file, "compiler block declared %d times", len(ap.Compiler))
		}
	}

	if len(root.Subprojects) > 0 {
		if err := claimOnce(&m.subprojectsFrom, "subprojects", file, len(root.Subprojects)); err != nil {
			return err
		}
		sp := root.Subprojects[0]
		m.desc.Defaults = config.SubprojectDefaults{
			EvaluationDependsOn: sp.EvaluationDependsOn,
			Variants:            sp.Variants,
		}
	}

	for _, s := range root.Subproject {
		if prev, dup := m.subprojectFrom[s.Name]; dup {
			return builderr.Configurationf(opLoad, file, "subproject %q already declared in %s", s.Name, prev)
		}
		m.subprojectFrom[s.Name] = file
		m.desc.Subprojects = append(m.desc.Subprojects, &config.Subproject{
			Name:                s.Name,
			EvaluationDependsOn: s.EvaluationDependsOn,
			Variants:            s.Variants,
			Dependencies:        s.Dependencies,
			Source:              file,
		})
	}

	logger.Debug("Merged HCL file.", "subprojects", len(root.Subproject))
	return nil
}

func claim(from *string, what, file string) error {
	if *from != "" {
		return builderr.Configurationf(opLoad, file, "%s already declared in %s", what, *from)
	}
	*from = file
	return nil
}

func claimOnce(from *string, what, file string, count int) error {
	if count > 1 {
		return builderr.Configuration(opLoad, file, fmt.Errorf("%s block declared %d times", what, count))
	}
	return claim(from, what, file)
}

func translateRepositories(blocks []*repositoryBlock, file string) []*config.Repository {
	out := make([]*config.Repository, 0, len(blocks))
	for _, b := range blocks {
		r := &config.Repository{Name: b.Name, Source: file}
		if b.URL != nil {
			r.URL = *b.URL
		}
		out = append(out, r)
	}
	return out
}

func translateCompiler(b *compilerBlock, file string) *config.Compiler {
	c := &config.Compiler{Incremental: b.Incremental, Flags: b.Flags, Source: file}
	if b.JVMTarget != nil {
		c.JVMTarget = *b.JVMTarget
	}
	return c
}
