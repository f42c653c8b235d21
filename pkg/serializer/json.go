package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

// JSON reads and writes projects as JSON documents.
type JSON struct{}

// NewJSON creates a JSON codec.
func NewJSON() *JSON {
	return &JSON{}
}

// Read materializes the project stored at location.
func (c *JSON) Read(ctx context.Context, location string) (*lifecycle.Project, error) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	return doc.toProject(location)
}

// Write persists p to location atomically.
func (c *JSON) Write(ctx context.Context, p *lifecycle.Project, location string) (bool, error) {
	raw, err := json.MarshalIndent(newDocument(p), "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshaling project: %w", err)
	}
	raw = append(raw, '\n')

	if err := renameio.WriteFile(location, raw, 0o600); err != nil {
		return false, fmt.Errorf("writing project file: %w", err)
	}
	return true, nil
}
