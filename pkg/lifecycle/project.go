package lifecycle

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project is an in-memory representation of a file-backed unit of work,
// keyed by its location.
type Project struct {
	// ID is the unique project identifier (UUID).
	ID string `json:"id" toml:"id"`

	// Name is the human-readable project name.
	Name string `json:"name" toml:"name"`

	// Location is the backing store path. Locations compare
	// case-insensitively: two projects whose locations differ only in case
	// are the same project.
	Location string `json:"location" toml:"location"`

	// Data is the opaque payload owned by the host application. The manager
	// never inspects it.
	Data map[string]any `json:"data,omitempty" toml:"data,omitempty"`

	// CreatedAt is when the project was first read.
	CreatedAt time.Time `json:"created_at" toml:"created_at"`

	// UpdatedAt is when the project was last written or refreshed.
	UpdatedAt time.Time `json:"updated_at" toml:"updated_at"`
}

// NewProject creates a project at location with a generated UUID.
func NewProject(name, location string) (*Project, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	now := time.Now()
	return &Project{
		ID:        uuid.New().String(),
		Name:      name,
		Location:  location,
		Data:      make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the project for structurally invalid fields.
func (p *Project) Validate() error {
	if p.ID == "" {
		return ErrEmptyProjectID
	}
	if _, err := uuid.Parse(p.ID); err != nil {
		return ErrInvalidProjectID
	}
	if p.Location == "" {
		return ErrEmptyLocation
	}
	return nil
}

// NormalizeLocation returns the canonical registry key for a location.
func NormalizeLocation(location string) string {
	return strings.ToLower(location)
}

// SameLocation reports whether two locations identify the same backing store.
func SameLocation(a, b string) bool {
	return strings.EqualFold(a, b)
}
