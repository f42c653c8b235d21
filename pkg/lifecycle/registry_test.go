package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProject(t *testing.T, location string) *Project {
	t.Helper()
	p, err := NewProject("proj", location)
	require.NoError(t, err)
	return p
}

func TestRegistry(t *testing.T) {
	t.Run("lookup is case-insensitive", func(t *testing.T) {
		r := newRegistry()
		p := mustProject(t, "/work/App.json")
		r.add(p)

		assert.Same(t, p, r.get("/WORK/APP.JSON"))
		assert.Same(t, p, r.get("/work/app.json"))
		assert.Nil(t, r.get("/work/other.json"))
	})

	t.Run("list preserves insertion order", func(t *testing.T) {
		r := newRegistry()
		locations := []string{"/c.json", "/a.json", "/b.json"}
		for _, loc := range locations {
			r.add(mustProject(t, loc))
		}

		got := r.list()
		require.Len(t, got, 3)
		for i, loc := range locations {
			assert.Equal(t, loc, got[i].Location)
		}
	})

	t.Run("replacement keeps the original position", func(t *testing.T) {
		r := newRegistry()
		r.add(mustProject(t, "/a.json"))
		r.add(mustProject(t, "/b.json"))

		replacement := mustProject(t, "/A.JSON")
		r.add(replacement)

		got := r.list()
		require.Len(t, got, 2)
		assert.Same(t, replacement, got[0])
	})

	t.Run("remove is case-insensitive and tolerant", func(t *testing.T) {
		r := newRegistry()
		r.add(mustProject(t, "/a.json"))

		r.remove("/A.JSON")
		assert.Equal(t, 0, r.len())

		r.remove("/never-registered.json")
		assert.Equal(t, 0, r.len())
	})
}
