package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_Missing(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	// Must not panic.
	logger.Info("dropped")
}

func TestWith_AppendsAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	ctx, logger := With(ctx, "subproject", "app")
	logger.Info("configured")
	FromContext(ctx).Info("again")

	out := buf.String()
	assert.Contains(t, out, "subproject=app")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("subproject=app")))
}
