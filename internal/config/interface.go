package config

import "context"

// Loader is the interface for a format-specific description loader.
type Loader interface {
	// Load reads the description found at the given paths (files or
	// directories), evaluates it, and returns the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Description, error)
}
