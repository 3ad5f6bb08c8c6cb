package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/buildplan/internal/builderr"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/fsutil"
)

// CleanName is the name of the clean task.
const CleanName = "clean"

// Clean deletes the output root and everything below it.
type Clean struct {
	Root string
}

// NewClean binds a clean action to root. The root must be absolute and must
// not be the filesystem root.
func NewClean(root string) (*Clean, error) {
	const op = "register-clean"
	if root == "" {
		return nil, builderr.Configurationf(op, root, "output root is empty")
	}
	if !filepath.IsAbs(root) {
		return nil, builderr.Configurationf(op, root, "output root must be absolute")
	}
	root = filepath.Clean(root)
	if filepath.Dir(root) == root {
		return nil, builderr.Configurationf(op, root, "refusing to clean the filesystem root")
	}
	return &Clean{Root: root}, nil
}

// Task returns the registry entry of the clean action.
func (c *Clean) Task() Task {
	return Task{Path: Path("", CleanName), Kind: KindClean, OutputDir: c.Root}
}

// Run removes the output root. A missing root is success, so running Clean
// any number of times leaves the same state.
func (c *Clean) Run(ctx context.Context) error {
	const op = "clean"
	logger := ctxlog.FromContext(ctx).With("root", c.Root)

	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := fsutil.Exists(c.Root)
	if err != nil {
		return builderr.Filesystem(op, c.Root, fmt.Errorf("failed to stat output root: %w", err))
	}
	if !exists {
		logger.Debug("Output root does not exist, nothing to clean.")
		return nil
	}

	if err := os.RemoveAll(c.Root); err != nil {
		return builderr.Filesystem(op, c.Root, fmt.Errorf("failed to remove output root: %w", err))
	}
	logger.Info("Output root removed.")
	return nil
}
