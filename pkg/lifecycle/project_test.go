package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	t.Run("generates a valid project", func(t *testing.T) {
		p, err := NewProject("demo", "/tmp/demo.json")
		require.NoError(t, err)

		assert.Equal(t, "demo", p.Name)
		assert.Equal(t, "/tmp/demo.json", p.Location)
		assert.NotNil(t, p.Data)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)

		_, err = uuid.Parse(p.ID)
		assert.NoError(t, err)
		assert.NoError(t, p.Validate())
	})

	t.Run("rejects empty location", func(t *testing.T) {
		_, err := NewProject("demo", "")
		assert.ErrorIs(t, err, ErrEmptyLocation)
	})
}

func TestProjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Project)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(p *Project) {},
		},
		{
			name:    "empty ID",
			mutate:  func(p *Project) { p.ID = "" },
			wantErr: ErrEmptyProjectID,
		},
		{
			name:    "malformed ID",
			mutate:  func(p *Project) { p.ID = "not-a-uuid" },
			wantErr: ErrInvalidProjectID,
		},
		{
			name:    "empty location",
			mutate:  func(p *Project) { p.Location = "" },
			wantErr: ErrEmptyLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProject("demo", "/tmp/demo.json")
			require.NoError(t, err)
			tt.mutate(p)

			err = p.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLocationComparison(t *testing.T) {
	assert.True(t, SameLocation("/Work/App.JSON", "/work/app.json"))
	assert.False(t, SameLocation("/work/app.json", "/work/other.json"))
	assert.Equal(t, NormalizeLocation("/Work/App.JSON"), NormalizeLocation("/work/app.json"))
}
