// Package serializer provides file-backed readers and writers for projects.
//
// A Selector maps locations to codecs by file extension and implements
// lifecycle.SerializerSelector. The JSON and TOML codecs share one on-disk
// document shape, so a project written by one can be read by the other
// under a different extension. Writes are atomic: the document is staged to
// a temporary file and renamed into place.
package serializer

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

// ErrCorruptDocument indicates the project file could not be decoded.
var ErrCorruptDocument = errors.New("serializer: corrupt project document")

// Codec is a reader/writer pair for one file format.
type Codec interface {
	lifecycle.Reader
	lifecycle.Writer
}

// Selector maps locations to codecs by extension. It implements
// lifecycle.SerializerSelector; locations with an unregistered extension
// resolve to nil, which the manager reports as a configuration error.
type Selector struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewSelector returns a selector with the JSON and TOML codecs registered
// under their usual extensions.
func NewSelector() *Selector {
	s := &Selector{codecs: make(map[string]Codec)}
	s.Register(".json", NewJSON())
	s.Register(".proj", NewJSON())
	s.Register(".toml", NewTOML())
	return s
}

// Register binds ext (with leading dot, case-insensitive) to codec.
func (s *Selector) Register(ext string, codec Codec) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codecs[strings.ToLower(ext)] = codec
}

// Reader returns the codec for location's extension, or nil.
func (s *Selector) Reader(location string) lifecycle.Reader {
	if c := s.codec(location); c != nil {
		return c
	}
	return nil
}

// Writer returns the codec for location's extension, or nil.
func (s *Selector) Writer(location string) lifecycle.Writer {
	if c := s.codec(location); c != nil {
		return c
	}
	return nil
}

func (s *Selector) codec(location string) Codec {
	ext := strings.ToLower(filepath.Ext(location))

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.codecs[ext]
}
