package serializer

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio/v2"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

// TOML reads and writes projects as TOML documents.
type TOML struct{}

// NewTOML creates a TOML codec.
func NewTOML() *TOML {
	return &TOML{}
}

// Read materializes the project stored at location.
func (c *TOML) Read(ctx context.Context, location string) (*lifecycle.Project, error) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	return doc.toProject(location)
}

// Write persists p to location atomically.
func (c *TOML) Write(ctx context.Context, p *lifecycle.Project, location string) (bool, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(newDocument(p)); err != nil {
		return false, fmt.Errorf("marshaling project: %w", err)
	}

	if err := renameio.WriteFile(location, buf.Bytes(), 0o600); err != nil {
		return false, fmt.Errorf("writing project file: %w", err)
	}
	return true, nil
}
