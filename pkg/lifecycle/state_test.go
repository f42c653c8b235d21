package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateTracker(t *testing.T) {
	t.Run("untouched location yields a zero state", func(t *testing.T) {
		tr := newStateTracker()

		st := tr.get("/a.json")
		assert.Equal(t, "/a.json", st.Location)
		assert.False(t, st.Loading)
	})

	t.Run("update creates the record lazily", func(t *testing.T) {
		tr := newStateTracker()
		tr.update("/a.json", func(s *ProjectState) { s.Saving = true })

		assert.True(t, tr.get("/a.json").Saving)
		assert.True(t, tr.get("/A.JSON").Saving, "keys are case-insensitive")
	})

	t.Run("get returns a clone", func(t *testing.T) {
		tr := newStateTracker()
		tr.update("/a.json", func(s *ProjectState) { s.Refreshing = true })

		st := tr.get("/a.json")
		st.Refreshing = false

		assert.True(t, tr.get("/a.json").Refreshing)
	})
}
