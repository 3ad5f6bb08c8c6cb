package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/fsutil"
)

const (
	opLoad    = "load-description"
	extension = ".hcl"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL description loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load reads every .hcl file named by paths (directories are searched
// recursively) and merges them into one description. The module root is the
// directory of the first path.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	if len(paths) == 0 {
		return nil, builderr.Configurationf(opLoad, "", "no description path given")
	}
	moduleRoot, err := fsutil.ModuleRoot(paths[0])
	if err != nil {
		return nil, builderr.Configuration(opLoad, paths[0], err)
	}

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, builderr.Configurationf(opLoad, paths[0], "no %s files found", extension)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	remains := make([]fileBody, 0, len(files))
	extras := make(map[string]string)
	extraSources := make(map[string]string)

	// First pass: collect extra properties from every file.
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, builderr.Configuration(opLoad, file, fmt.Errorf("failed to parse HCL file: %w", diags))
		}

		var root extraRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, builderr.Configuration(opLoad, file, fmt.Errorf("failed to decode HCL file: %w", diags))
		}
		for _, block := range root.Extra {
			values, err := evalExtra(block.Body)
			if err != nil {
				return nil, builderr.Configuration(opLoad, file, err)
			}
			for name, value := range values {
				if prev, dup := extraSources[name]; dup {
					return nil, builderr.Configurationf(opLoad, file, "extra property %q already defined in %s", name, prev)
				}
				extras[name] = value
				extraSources[name] = file
			}
		}
		remains = append(remains, fileBody{path: file, body: root.Remain})
	}
	logger.Debug("Extra properties collected.", "count", len(extras))

	// Second pass: decode the rest with extra in scope.
	evalCtx := newEvalContext(extras)
	m := newMerger(moduleRoot, files, extras)
	for _, fb := range remains {
		var root fileRoot
		if diags := gohcl.DecodeBody(fb.body, evalCtx, &root); diags.HasErrors() {
			return nil, builderr.Configuration(opLoad, fb.path, fmt.Errorf("failed to decode HCL file: %w", diags))
		}
		if err := m.merge(ctx, fb.path, &root); err != nil {
			return nil, err
		}
	}

	desc := m.description()
	logger.Debug("HCL loading complete.",
		"subprojects", len(desc.Subprojects),
		"plugins", len(desc.Buildscript.Plugins),
		"repositories", len(desc.AllProjects.Repositories),
	)
	return desc, nil
}

type fileBody struct {
	path string
	body hcl.Body
}

// findAllHCLFiles returns the .hcl files named by paths, in the order given,
// each directory contributing its files sorted by path.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, builderr.Filesystem(opLoad, path, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, builderr.Configuration(opLoad, path, fmt.Errorf("error accessing path: %w", err))
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(abs, extension)
			if err != nil {
				return nil, builderr.Filesystem(opLoad, path, err)
			}
			for _, f := range found {
				add(f)
			}
			continue
		}
		if filepath.Ext(abs) != extension {
			return nil, builderr.Configurationf(opLoad, path, "not an %s file", extension)
		}
		add(abs)
	}
	return allFiles, nil
}
