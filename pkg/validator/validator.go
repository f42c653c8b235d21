// Package validator provides a filesystem validator for project locations.
package validator

import (
	"context"
	"fmt"
	"os"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

const defaultMaxSize = 64 << 20 // 64MB

// Path validates that locations are regular, readable files of sane size
// before a load, and that loaded projects are structurally valid. It
// implements lifecycle.Validator.
type Path struct {
	maxSize int64
}

// Option configures a Path validator.
type Option func(*Path)

// WithMaxSize caps the accepted project file size in bytes. Zero disables
// the check.
func WithMaxSize(n int64) Option {
	return func(v *Path) {
		v.maxSize = n
	}
}

// NewPath creates a validator with the given options.
func NewPath(opts ...Option) *Path {
	v := &Path{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// CanStartLoading reports whether location exists as a regular file.
func (v *Path) CanStartLoading(ctx context.Context, location string) bool {
	info, err := os.Stat(location)
	return err == nil && info.Mode().IsRegular()
}

// ValidateBeforeLoading inspects the location on disk.
func (v *Path) ValidateBeforeLoading(ctx context.Context, location string) lifecycle.ValidationResult {
	var res lifecycle.ValidationResult

	info, err := os.Stat(location)
	if err != nil {
		res.Add(fmt.Sprintf("location %q is not readable: %v", location, err))
		return res
	}
	if !info.Mode().IsRegular() {
		res.Add(fmt.Sprintf("location %q is not a regular file", location))
		return res
	}
	if v.maxSize > 0 && info.Size() > v.maxSize {
		res.Add(fmt.Sprintf("project file too large: %d bytes (max %d)", info.Size(), v.maxSize))
	}
	return res
}

// ValidateLoaded inspects the project produced by the reader.
func (v *Path) ValidateLoaded(ctx context.Context, p *lifecycle.Project) lifecycle.ValidationResult {
	var res lifecycle.ValidationResult

	if p == nil {
		res.Add("reader produced no project")
		return res
	}
	if err := p.Validate(); err != nil {
		res.Add(err.Error())
	}
	return res
}
