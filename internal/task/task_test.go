package task

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileName(t *testing.T) {
	assert.Equal(t, "compileDebugKotlin", CompileName("debug"))
	assert.Equal(t, "compileReleaseKotlin", CompileName("release"))
	assert.Equal(t, "compileStagingKotlin", CompileName("staging"))
	assert.Equal(t, "compileKotlin", CompileName(""))
}

func TestNewCompile_OwnsOptions(t *testing.T) {
	opts := compiler.Options{JVMTarget: "11", Flags: map[string]string{"k": "v"}}
	tk, err := NewCompile("camera", "debug", "/out/camera", opts)
	require.NoError(t, err)

	assert.Equal(t, ":camera:compileDebugKotlin", tk.Path)
	assert.Equal(t, KindCompile, tk.Kind)
	assert.Equal(t, "/out/camera", tk.OutputDir)

	opts.Flags["k"] = "changed"
	assert.Equal(t, "v", tk.Compiler.Flags["k"])

	_, err = NewCompile("camera", " ", "/out/camera", opts)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, _ := NewCompile("app", "debug", "/out/app", compiler.Options{JVMTarget: "11"})
	b, _ := NewCompile("app", "release", "/out/app", compiler.Options{JVMTarget: "11"})
	clean := (&Clean{Root: "/out"}).Task()

	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(clean))
	assert.ErrorContains(t, r.Register(a), "already registered")

	got, ok := r.Get(":clean")
	require.True(t, ok)
	assert.Equal(t, KindClean, got.Kind)

	_, ok = r.Get(":missing")
	assert.False(t, ok)

	assert.Equal(t, []Task{a, b, clean}, r.All())
	assert.Equal(t, []Task{a, b}, r.OfKind(KindCompile))
}

func TestNewClean_Rejects(t *testing.T) {
	for _, root := range []string{"", "relative/build", string(filepath.Separator)} {
		_, err := NewClean(root)
		assert.ErrorIs(t, err, builderr.ErrConfiguration, "root %q", root)
	}
}

func TestClean_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("missing root is a no-op", func(t *testing.T) {
		c, err := NewClean(filepath.Join(t.TempDir(), "build"))
		require.NoError(t, err)
		assert.NoError(t, c.Run(ctx))
	})

	t.Run("removes tree and is idempotent", func(t *testing.T) {
		base := t.TempDir()
		root := filepath.Join(base, "build")
		require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "intermediates"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "app", "intermediates", "classes.jar"), []byte("x"), 0o644))
		sibling := filepath.Join(base, "android")
		require.NoError(t, os.MkdirAll(sibling, 0o755))

		c, err := NewClean(root)
		require.NoError(t, err)

		require.NoError(t, c.Run(ctx))
		_, err = os.Stat(root)
		assert.ErrorIs(t, err, os.ErrNotExist)

		require.NoError(t, c.Run(ctx), "second run must succeed")
		_, err = os.Stat(sibling)
		assert.NoError(t, err, "clean must not touch anything outside the root")
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, err := NewClean(filepath.Join(t.TempDir(), "build"))
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, c.Run(cctx), context.Canceled)
	})
}
