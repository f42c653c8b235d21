package validator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	location := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(location, []byte(content), 0o600))
	return location
}

func TestCanStartLoading(t *testing.T) {
	ctx := context.Background()
	v := NewPath()

	assert.True(t, v.CanStartLoading(ctx, writeTemp(t, "ok.json", "{}")))
	assert.False(t, v.CanStartLoading(ctx, filepath.Join(t.TempDir(), "absent.json")))
	assert.False(t, v.CanStartLoading(ctx, t.TempDir()), "directories are not loadable")
}

func TestValidateBeforeLoading(t *testing.T) {
	ctx := context.Background()

	t.Run("regular file passes", func(t *testing.T) {
		res := NewPath().ValidateBeforeLoading(ctx, writeTemp(t, "ok.json", "{}"))
		assert.True(t, res.OK())
	})

	t.Run("missing file", func(t *testing.T) {
		res := NewPath().ValidateBeforeLoading(ctx, filepath.Join(t.TempDir(), "absent.json"))
		require.False(t, res.OK())
		assert.Contains(t, res.Errors[0], "not readable")
	})

	t.Run("directory", func(t *testing.T) {
		res := NewPath().ValidateBeforeLoading(ctx, t.TempDir())
		require.False(t, res.OK())
		assert.Contains(t, res.Errors[0], "not a regular file")
	})

	t.Run("oversized file", func(t *testing.T) {
		v := NewPath(WithMaxSize(4))
		res := v.ValidateBeforeLoading(ctx, writeTemp(t, "big.json", "{\"k\":\"value\"}"))
		require.False(t, res.OK())
		assert.Contains(t, res.Errors[0], "too large")
	})

	t.Run("size cap disabled", func(t *testing.T) {
		v := NewPath(WithMaxSize(0))
		res := v.ValidateBeforeLoading(ctx, writeTemp(t, "big.json", "{\"k\":\"value\"}"))
		assert.True(t, res.OK())
	})
}

func TestValidateLoaded(t *testing.T) {
	ctx := context.Background()
	v := NewPath()

	t.Run("valid project passes", func(t *testing.T) {
		p, err := lifecycle.NewProject("demo", "/tmp/demo.json")
		require.NoError(t, err)
		assert.True(t, v.ValidateLoaded(ctx, p).OK())
	})

	t.Run("nil project", func(t *testing.T) {
		res := v.ValidateLoaded(ctx, nil)
		require.False(t, res.OK())
		assert.Contains(t, res.Errors[0], "no project")
	})

	t.Run("structurally invalid project", func(t *testing.T) {
		p, err := lifecycle.NewProject("demo", "/tmp/demo.json")
		require.NoError(t, err)
		p.ID = "not-a-uuid"

		res := v.ValidateLoaded(ctx, p)
		assert.False(t, res.OK())
	})
}
