package serializer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

func TestSelector(t *testing.T) {
	s := NewSelector()

	t.Run("resolves by extension, case-insensitive", func(t *testing.T) {
		assert.IsType(t, &JSON{}, s.Reader("/work/app.json"))
		assert.IsType(t, &JSON{}, s.Reader("/work/APP.PROJ"))
		assert.IsType(t, &TOML{}, s.Writer("/work/app.toml"))
	})

	t.Run("unknown extension yields nil", func(t *testing.T) {
		assert.Nil(t, s.Reader("/work/app.xml"))
		assert.Nil(t, s.Writer("/work/app"))
	})

	t.Run("custom registration", func(t *testing.T) {
		s.Register(".pkproj", NewTOML())
		assert.IsType(t, &TOML{}, s.Reader("/work/app.pkproj"))
	})

	t.Run("satisfies the lifecycle selector", func(t *testing.T) {
		var _ lifecycle.SerializerSelector = s
	})
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "app.json")

	p, err := lifecycle.NewProject("app", location)
	require.NoError(t, err)
	p.Data["owner"] = "infra"

	codec := NewJSON()
	ok, err := codec.Write(ctx, p, location)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := codec.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, location, got.Location)
	assert.Equal(t, "infra", got.Data["owner"])
}

func TestTOMLRoundTrip(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "app.toml")

	p, err := lifecycle.NewProject("app", location)
	require.NoError(t, err)
	p.Data["owner"] = "infra"

	codec := NewTOML()
	ok, err := codec.Write(ctx, p, location)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := codec.Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, location, got.Location)
	assert.Equal(t, "infra", got.Data["owner"])
}

func TestReadDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("missing ID and name get defaults", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "legacy.json")
		require.NoError(t, os.WriteFile(location, []byte(`{"data":{"k":"v"}}`), 0o600))

		got, err := NewJSON().Read(ctx, location)
		require.NoError(t, err)
		assert.Equal(t, "legacy", got.Name)
		assert.NoError(t, got.Validate())
		assert.Equal(t, "v", got.Data["k"])
	})

	t.Run("stored location is ignored in favor of the file path", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "moved.json")
		p, err := lifecycle.NewProject("moved", "/somewhere/else.json")
		require.NoError(t, err)
		_, err = NewJSON().Write(ctx, p, location)
		require.NoError(t, err)

		got, err := NewJSON().Read(ctx, location)
		require.NoError(t, err)
		assert.Equal(t, location, got.Location)
	})
}

func TestReadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewJSON().Read(ctx, filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("corrupt JSON", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(location, []byte("{nope"), 0o600))

		_, err := NewJSON().Read(ctx, location)
		assert.ErrorIs(t, err, ErrCorruptDocument)
	})

	t.Run("corrupt TOML", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(location, []byte("= broken ="), 0o600))

		_, err := NewTOML().Read(ctx, location)
		assert.ErrorIs(t, err, ErrCorruptDocument)
	})
}

func TestWriteReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "app.json")

	first, err := lifecycle.NewProject("first", location)
	require.NoError(t, err)
	_, err = NewJSON().Write(ctx, first, location)
	require.NoError(t, err)

	second, err := lifecycle.NewProject("second", location)
	require.NoError(t, err)
	_, err = NewJSON().Write(ctx, second, location)
	require.NoError(t, err)

	got, err := NewJSON().Read(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)

	entries, err := os.ReadDir(filepath.Dir(location))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
