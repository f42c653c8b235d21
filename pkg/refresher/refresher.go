// Package refresher provides fsnotify-backed external-change detection for
// project locations.
//
// A FileRefresher watches the parent directory of its location rather than
// the file itself: editors and atomic writers replace files via rename,
// which drops a watch placed directly on the file. Events are filtered by
// name and debounced so a burst of writes produces one callback.
package refresher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"

	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

var (
	// ErrAlreadySubscribed indicates Subscribe was called twice without an
	// intervening Unsubscribe.
	ErrAlreadySubscribed = errors.New("refresher: already subscribed")

	// ErrNotSubscribed indicates Unsubscribe was called without an active
	// subscription.
	ErrNotSubscribed = errors.New("refresher: not subscribed")
)

const defaultDebounce = 250 * time.Millisecond

// Selector hands out file refreshers for locations that exist on disk. It
// implements lifecycle.RefresherSelector.
type Selector struct {
	debounce time.Duration
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithDebounce sets the quiet period between the last filesystem event and
// the change callback.
func WithDebounce(d time.Duration) SelectorOption {
	return func(s *Selector) {
		s.debounce = d
	}
}

// NewSelector creates a selector with the given options.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{debounce: defaultDebounce}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresher returns a refresher for location, or nil when the location does
// not exist yet and there is nothing to watch.
func (s *Selector) Refresher(location string) lifecycle.Refresher {
	if _, err := os.Stat(location); err != nil {
		return nil
	}
	return NewFileRefresher(location, s.debounce)
}

// FileRefresher watches one location for writes, creates and renames. It
// implements lifecycle.Refresher.
type FileRefresher struct {
	location string
	debounce time.Duration

	mu   sync.Mutex
	sctx *stopper.Context
}

// NewFileRefresher creates an inactive refresher for location. A debounce
// of zero or less selects the default quiet period.
func NewFileRefresher(location string, debounce time.Duration) *FileRefresher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &FileRefresher{location: location, debounce: debounce}
}

// Subscribe starts the watch goroutine. onUpdate is invoked with the
// location after each debounced change burst, from the watch goroutine.
func (r *FileRefresher) Subscribe(onUpdate func(location string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sctx != nil {
		return ErrAlreadySubscribed
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(r.location)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	sctx := stopper.WithContext(context.Background())
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	name := filepath.Base(r.location)
	location := r.location
	debounce := r.debounce

	sctx.Go(func(sctx *stopper.Context) error {
		var debouncer *time.Timer
		sctx.Defer(func() {
			if debouncer != nil {
				debouncer.Stop()
			}
		})

		for {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !strings.EqualFold(filepath.Base(event.Name), name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(debounce, func() {
					if !sctx.IsStopping() {
						onUpdate(location)
					}
				})

			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	})

	r.sctx = sctx
	return nil
}

// Unsubscribe stops the watch goroutine and waits for it to exit.
func (r *FileRefresher) Unsubscribe() error {
	r.mu.Lock()
	sctx := r.sctx
	r.sctx = nil
	r.mu.Unlock()

	if sctx == nil {
		return ErrNotSubscribed
	}

	sctx.Stop(100 * time.Millisecond)
	return sctx.Wait()
}
