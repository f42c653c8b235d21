package serializer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

// document is the on-disk project representation shared by the codecs. The
// location is not stored: the file's own path is authoritative, so moved
// files come back under their new location.
type document struct {
	ID        string         `json:"id" toml:"id"`
	Name      string         `json:"name" toml:"name"`
	Data      map[string]any `json:"data,omitempty" toml:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at" toml:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" toml:"updated_at"`
}

func newDocument(p *lifecycle.Project) document {
	return document{
		ID:        p.ID,
		Name:      p.Name,
		Data:      p.Data,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// toProject materializes the document as a project at location. Documents
// written by other tools may omit the ID or name; both get usable defaults.
func (d document) toProject(location string) (*lifecycle.Project, error) {
	name := d.Name
	if name == "" {
		base := filepath.Base(location)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if d.ID == "" {
		p, err := lifecycle.NewProject(name, location)
		if err != nil {
			return nil, err
		}
		p.Data = d.Data
		return p, nil
	}

	return &lifecycle.Project{
		ID:        d.ID,
		Name:      name,
		Location:  location,
		Data:      d.Data,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}
