package hcl

import (
	"context"
	"testing"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_AndroidBuild(t *testing.T) {
	ws := testutil.NewWorkspace(t, map[string]string{"build.hcl": testutil.AndroidBuildHCL})

	desc, err := NewLoader().Load(context.Background(), ws.Path("build.hcl"))
	require.NoError(t, err)

	assert.Equal(t, ws.ModuleRoot, desc.ModuleRoot)
	assert.Equal(t, []string{ws.Path("build.hcl")}, desc.Files)
	assert.Equal(t, "../build", desc.BuildDir)
	assert.Equal(t, map[string]string{"kotlin_version": "1.9.22"}, desc.Extra)

	require.Len(t, desc.Buildscript.Repositories, 2)
	assert.Equal(t, "google", desc.Buildscript.Repositories[0].Name)
	assert.Empty(t, desc.Buildscript.Repositories[0].URL)

	require.Len(t, desc.Buildscript.Plugins, 3)
	kgp := desc.Buildscript.Plugins[2]
	assert.Equal(t, "org.jetbrains.kotlin:kotlin-gradle-plugin", kgp.Coordinate)
	assert.Equal(t, "1.9.22", kgp.Version, "extra reference must be evaluated")
	assert.Equal(t, map[string]string{"com.android.tools.build:gradle": ">= 7.4.0, < 9.0.0"}, kgp.Requires)

	require.Len(t, desc.AllProjects.Repositories, 3)
	assert.Equal(t, "https://storage.googleapis.com/download.flutter.io", desc.AllProjects.Repositories[2].URL)
	require.NotNil(t, desc.AllProjects.Compiler)
	assert.Equal(t, "11", desc.AllProjects.Compiler.JVMTarget)
	require.NotNil(t, desc.AllProjects.Compiler.Incremental)
	assert.False(t, *desc.AllProjects.Compiler.Incremental)

	assert.Equal(t, []string{":app"}, desc.Defaults.EvaluationDependsOn)

	var names []string
	for _, s := range desc.Subprojects {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"app", "camera", "maps", "charts"}, names)
	assert.Equal(t, []string{"org.jetbrains.kotlin:kotlin-stdlib-jdk7:1.9.22"}, desc.Subprojects[0].Dependencies)
	assert.Equal(t, []string{":maps"}, desc.Subprojects[3].EvaluationDependsOn)
}

func TestLoader_DirectoryMergesFilesInOrder(t *testing.T) {
	ws := testutil.NewWorkspace(t, map[string]string{
		"a_extra.hcl": `extra { kotlin_version = "1.9.22" }`,
		"b_build.hcl": `
buildscript {
  repository "google" {}
  plugin "org.jetbrains.kotlin:kotlin-gradle-plugin" {
    version = extra.kotlin_version
  }
}`,
		"modules/camera.hcl": `subproject "camera" {}`,
		"modules/app.hcl":    `subproject "app" {}`,
		"README.md":          "not a description",
	})

	desc, err := NewLoader().Load(context.Background(), ws.ModuleRoot)
	require.NoError(t, err)

	assert.Equal(t, ws.ModuleRoot, desc.ModuleRoot)
	assert.Len(t, desc.Files, 4)
	assert.Equal(t, config.DefaultBuildDir, desc.BuildDir)
	assert.Equal(t, "1.9.22", desc.Buildscript.Plugins[0].Version)
	require.Len(t, desc.Subprojects, 2)
	assert.Equal(t, "app", desc.Subprojects[0].Name, "files are read in sorted order")
	assert.Nil(t, desc.AllProjects.Compiler)
}

func TestLoader_NumericExtraIsString(t *testing.T) {
	ws := testutil.NewWorkspace(t, map[string]string{"build.hcl": `
extra { min_sdk = 21 }
subproject "app" {}
`})
	desc, err := NewLoader().Load(context.Background(), ws.Path("build.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "21", desc.Extra["min_sdk"])
}

func TestLoader_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantMsg string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"build.hcl": `buildscript {`},
			wantMsg: "failed to parse HCL file",
		},
		{
			name:    "unknown block",
			files:   map[string]string{"build.hcl": `android {}`},
			wantMsg: "failed to decode HCL file",
		},
		{
			name:    "undefined extra reference",
			files:   map[string]string{"build.hcl": "buildscript {\n  plugin \"a:b\" {\n    version = extra.missing\n  }\n}\n"},
			wantMsg: "failed to decode HCL file",
		},
		{
			name:    "buildscript twice",
			files:   map[string]string{"build.hcl": "buildscript {}\nbuildscript {}\n"},
			wantMsg: "buildscript block declared 2 times",
		},
		{
			name: "allprojects in two files",
			files: map[string]string{
				"a.hcl": "allprojects {}\n",
				"b.hcl": "allprojects {}\n",
			},
			wantMsg: "allprojects already declared",
		},
		{
			name:    "compiler twice",
			files:   map[string]string{"build.hcl": "allprojects {\n compiler {}\n compiler {}\n}\n"},
			wantMsg: "compiler block declared 2 times",
		},
		{
			name: "duplicate subproject",
			files: map[string]string{
				"a.hcl": `subproject "app" {}`,
				"b.hcl": `subproject "app" {}`,
			},
			wantMsg: `subproject "app" already declared`,
		},
		{
			name: "duplicate extra property",
			files: map[string]string{
				"a.hcl": `extra { kotlin_version = "1.9.22" }`,
				"b.hcl": `extra { kotlin_version = "1.9.0" }`,
			},
			wantMsg: `extra property "kotlin_version" already defined`,
		},
		{
			name:    "extra referencing extra",
			files:   map[string]string{"build.hcl": "extra {\n  a = \"1\"\n  b = extra.a\n}\n"},
			wantMsg: `extra property`,
		},
		{
			name:    "no hcl files",
			files:   map[string]string{"notes.txt": "x"},
			wantMsg: "no .hcl files found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ws := testutil.NewWorkspace(t, tc.files)
			_, err := NewLoader().Load(context.Background(), ws.ModuleRoot)
			require.Error(t, err)
			assert.ErrorIs(t, err, builderr.ErrConfiguration)
			assert.ErrorContains(t, err, tc.wantMsg)
		})
	}
}

func TestLoader_MissingPath(t *testing.T) {
	ws := testutil.NewWorkspace(t, nil)
	_, err := NewLoader().Load(context.Background(), ws.Path("build.hcl"))
	assert.ErrorIs(t, err, builderr.ErrConfiguration)

	_, err = NewLoader().Load(context.Background())
	assert.ErrorContains(t, err, "no description path given")
}

func TestLoader_RejectsNonHCLFile(t *testing.T) {
	ws := testutil.NewWorkspace(t, map[string]string{"build.gradle.kts": "plugins {}"})
	_, err := NewLoader().Load(context.Background(), ws.Path("build.gradle.kts"))
	assert.ErrorContains(t, err, "not an .hcl file")
}
