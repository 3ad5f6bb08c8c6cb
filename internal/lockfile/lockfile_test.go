package lockfile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/hcl"
	"github.com/specialistvlad/buildplan/internal/plan"
	"github.com/specialistvlad/buildplan/internal/repository"
	"github.com/specialistvlad/buildplan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	google  = repository.Ref{Name: "google", URL: repository.WellKnown["google"]}
	central = repository.Ref{Name: "maven_central", URL: repository.WellKnown["maven_central"]}
)

func sampleResolved() *plan.Resolved {
	return &plan.Resolved{
		Plugins: []repository.Resolution{
			{Coordinate: repository.Coordinate{Group: "org.jetbrains.kotlin", Artifact: "kotlin-gradle-plugin", Version: "1.9.22"}, Repository: central},
			{Coordinate: repository.Coordinate{Group: "com.android.tools.build", Artifact: "gradle", Version: "8.1.0"}, Repository: google},
		},
		Dependencies: []repository.Resolution{
			{Coordinate: repository.Coordinate{Group: "androidx.core", Artifact: "core-ktx", Version: "1.12.0"}, Repository: google},
		},
	}
}

func TestNew_SortsEntries(t *testing.T) {
	lf := New(sampleResolved())

	assert.Equal(t, FormatVersion, lf.Version)
	require.Len(t, lf.Plugins, 2)
	assert.Equal(t, "com.android.tools.build:gradle", lf.Plugins[0].Module)
	assert.Equal(t, "org.jetbrains.kotlin:kotlin-gradle-plugin", lf.Plugins[1].Module)
	assert.Equal(t, "maven_central", lf.Plugins[1].Repository)
	assert.Equal(t, Entry{
		Module:        "androidx.core:core-ktx",
		Version:       "1.12.0",
		Repository:    "google",
		RepositoryURL: "https://dl.google.com/dl/android/maven2",
	}, lf.Dependencies[0])
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "buildplan.lock")
	lf := New(sampleResolved())

	require.NoError(t, Write(path, lf))
	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, lf, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files may be left behind")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "module: com.android.tools.build:gradle")
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "missing.lock"))
	assert.ErrorIs(t, err, builderr.ErrFilesystem)

	bad := filepath.Join(dir, "bad.lock")
	require.NoError(t, os.WriteFile(bad, []byte("version: [\n"), 0o644))
	_, err = Read(bad)
	assert.ErrorIs(t, err, builderr.ErrConfiguration)

	future := filepath.Join(dir, "future.lock")
	require.NoError(t, os.WriteFile(future, []byte("version: 7\n"), 0o644))
	_, err = Read(future)
	assert.ErrorContains(t, err, "unsupported lockfile version 7")
}

func TestDiff(t *testing.T) {
	old := New(sampleResolved())

	res := sampleResolved()
	res.Plugins[1].Coordinate.Version = "8.2.0"
	res.Dependencies = nil
	res.Plugins = append(res.Plugins, repository.Resolution{
		Coordinate: repository.Coordinate{Group: "com.google.gms", Artifact: "google-services", Version: "4.4.0"},
		Repository: google,
	})
	lf := New(res)

	assert.Equal(t, []string{
		"~ plugin com.android.tools.build:gradle 8.2.0 from google (was 8.1.0 from google)",
		"+ plugin com.google.gms:google-services 4.4.0 from google",
		"- dependency androidx.core:core-ktx 1.12.0",
	}, lf.Diff(old))
	assert.Empty(t, old.Diff(old))
}

func TestDiff_ModuleAtSeveralVersions(t *testing.T) {
	entry := func(version, repo string) Entry {
		return Entry{Module: "g:a", Version: version, Repository: repo, RepositoryURL: "https://" + repo}
	}
	old := &Lockfile{Version: FormatVersion, Dependencies: []Entry{entry("1.0.0", "google"), entry("2.0.0", "google")}}

	assert.Empty(t, old.Diff(old))

	testCases := []struct {
		name string
		deps []Entry
		want []string
	}{
		{
			name: "one version dropped",
			deps: []Entry{entry("2.0.0", "google")},
			want: []string{"- dependency g:a 1.0.0"},
		},
		{
			name: "third version added",
			deps: []Entry{entry("1.0.0", "google"), entry("2.0.0", "google"), entry("3.0.0", "google")},
			want: []string{"+ dependency g:a 3.0.0 from google"},
		},
		{
			name: "one version moved repository",
			deps: []Entry{entry("1.0.0", "google"), entry("2.0.0", "flutter")},
			want: []string{"~ dependency g:a 2.0.0 from flutter (was 2.0.0 from google)"},
		},
		{
			name: "one version replaced",
			deps: []Entry{entry("1.0.0", "google"), entry("2.1.0", "google")},
			want: []string{"~ dependency g:a 2.1.0 from google (was 2.0.0 from google)"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lf := &Lockfile{Version: FormatVersion, Dependencies: tc.deps}
			assert.Equal(t, tc.want, lf.Diff(old))
		})
	}
}

func configuredPlan(t *testing.T) *plan.Plan {
	t.Helper()
	ws := testutil.NewWorkspace(t, map[string]string{"build.hcl": testutil.AndroidBuildHCL})
	desc, err := hcl.NewLoader().Load(context.Background(), ws.Path("build.hcl"))
	require.NoError(t, err)
	p, err := plan.Configure(context.Background(), desc, plan.Options{})
	require.NoError(t, err)
	return p
}

func TestRenderPlan(t *testing.T) {
	p := configuredPlan(t)

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderPlan(&buf, p, FormatYAML))

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, []any{"app", "camera", "maps", "charts"}, doc["order"])
		assert.Equal(t, map[string]any{"jvm_target": "11", "incremental": false}, doc["compiler"])
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderPlan(&buf, p, FormatJSON))

		var doc struct {
			Order []string `json:"order"`
			Tasks []struct {
				Path string `json:"path"`
			} `json:"tasks"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		assert.Equal(t, []string{"app", "camera", "maps", "charts"}, doc.Order)
		assert.Len(t, doc.Tasks, 9)
		assert.Equal(t, ":clean", doc.Tasks[len(doc.Tasks)-1].Path)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorContains(t, RenderPlan(&bytes.Buffer{}, p, "toml"), `unknown format "toml"`)
	})
}
