package lifecycle

import (
	"context"
	"sync"
)

// LoadingEvent announces a load about to begin. Observers may set Cancel to
// veto the load; no reader runs after a veto.
type LoadingEvent struct {
	Location string
	Cancel   bool
}

// LoadedEvent announces a successfully registered project.
type LoadedEvent struct {
	Project *Project
}

// LoadingFailedEvent carries the error and any validator findings for a load
// that aborted. The registry is untouched.
type LoadingFailedEvent struct {
	Location   string
	Err        error
	Validation ValidationResult
}

// LoadingCanceledEvent announces a load vetoed by an observer.
type LoadingCanceledEvent struct {
	Location string
}

// SavingEvent announces a save about to begin.
type SavingEvent struct {
	Project  *Project
	Location string
	Cancel   bool
}

// SavedEvent announces a completed write.
type SavedEvent struct {
	Project  *Project
	Location string
}

// SavingFailedEvent carries the write error. Err is nil when the writer
// declined the write without failing.
type SavingFailedEvent struct {
	Project  *Project
	Location string
	Err      error
}

// SavingCanceledEvent announces a save vetoed by an observer.
type SavingCanceledEvent struct {
	Project  *Project
	Location string
}

// ClosingEvent announces a close about to begin.
type ClosingEvent struct {
	Project *Project
	Cancel  bool
}

// ClosedEvent announces an unregistered project.
type ClosedEvent struct {
	Project *Project
}

// ClosingCanceledEvent announces a close vetoed by an observer; the project
// stays registered and, if it was, active.
type ClosingCanceledEvent struct {
	Project *Project
}

// RefreshingEvent announces a refresh about to begin.
type RefreshingEvent struct {
	Project *Project
	Cancel  bool
}

// RefreshedEvent carries the replaced instance and the freshly read one.
type RefreshedEvent struct {
	Old *Project
	New *Project
}

// RefreshingFailedEvent carries the error and validator findings for a
// failed refresh. The location ends up unregistered: the old instance was
// removed before the re-read.
type RefreshingFailedEvent struct {
	Location   string
	Err        error
	Validation ValidationResult
}

// RefreshingCanceledEvent announces a refresh vetoed by an observer.
type RefreshingCanceledEvent struct {
	Project *Project
}

// ActivationEvent announces an active-project switch. New nil means
// deactivation; Old nil means nothing was active before. Activation and
// deactivation share this one event family so observers can treat the
// switch as a single transition.
type ActivationEvent struct {
	Old    *Project
	New    *Project
	Cancel bool
}

// ActivatedEvent announces a completed active-project switch.
type ActivatedEvent struct {
	Old *Project
	New *Project
}

// ActivationFailedEvent announces an activation that could not commit; the
// previous active project stays in place.
type ActivationFailedEvent struct {
	Old *Project
	New *Project
	Err error
}

// ActivationCanceledEvent announces a switch vetoed by an observer.
type ActivationCanceledEvent struct {
	Old *Project
	New *Project
}

// Observer receives lifecycle notifications. Begin notifications (Loading,
// Saving, Closing, Refreshing, Activation) are delivered before the manager
// acts; setting the event's Cancel field vetoes the transition. Within one
// transition the begin notification is followed by exactly one of the
// failed, canceled, or completed notifications.
//
// Observers run synchronously in subscription order with no timeout; a
// blocking observer stalls the transition. Panics inside an observer are not
// recovered.
//
// Embed BaseObserver to implement only the notifications you care about.
type Observer interface {
	Loading(ctx context.Context, e *LoadingEvent)
	Loaded(ctx context.Context, e *LoadedEvent)
	LoadingFailed(ctx context.Context, e *LoadingFailedEvent)
	LoadingCanceled(ctx context.Context, e *LoadingCanceledEvent)

	Saving(ctx context.Context, e *SavingEvent)
	Saved(ctx context.Context, e *SavedEvent)
	SavingFailed(ctx context.Context, e *SavingFailedEvent)
	SavingCanceled(ctx context.Context, e *SavingCanceledEvent)

	Closing(ctx context.Context, e *ClosingEvent)
	Closed(ctx context.Context, e *ClosedEvent)
	ClosingCanceled(ctx context.Context, e *ClosingCanceledEvent)

	Refreshing(ctx context.Context, e *RefreshingEvent)
	Refreshed(ctx context.Context, e *RefreshedEvent)
	RefreshingFailed(ctx context.Context, e *RefreshingFailedEvent)
	RefreshingCanceled(ctx context.Context, e *RefreshingCanceledEvent)

	Activation(ctx context.Context, e *ActivationEvent)
	Activated(ctx context.Context, e *ActivatedEvent)
	ActivationFailed(ctx context.Context, e *ActivationFailedEvent)
	ActivationCanceled(ctx context.Context, e *ActivationCanceledEvent)
}

// BaseObserver implements Observer with no-ops.
type BaseObserver struct{}

func (BaseObserver) Loading(context.Context, *LoadingEvent)                 {}
func (BaseObserver) Loaded(context.Context, *LoadedEvent)                   {}
func (BaseObserver) LoadingFailed(context.Context, *LoadingFailedEvent)     {}
func (BaseObserver) LoadingCanceled(context.Context, *LoadingCanceledEvent) {}

func (BaseObserver) Saving(context.Context, *SavingEvent)                 {}
func (BaseObserver) Saved(context.Context, *SavedEvent)                   {}
func (BaseObserver) SavingFailed(context.Context, *SavingFailedEvent)     {}
func (BaseObserver) SavingCanceled(context.Context, *SavingCanceledEvent) {}

func (BaseObserver) Closing(context.Context, *ClosingEvent)                 {}
func (BaseObserver) Closed(context.Context, *ClosedEvent)                   {}
func (BaseObserver) ClosingCanceled(context.Context, *ClosingCanceledEvent) {}

func (BaseObserver) Refreshing(context.Context, *RefreshingEvent)                 {}
func (BaseObserver) Refreshed(context.Context, *RefreshedEvent)                   {}
func (BaseObserver) RefreshingFailed(context.Context, *RefreshingFailedEvent)     {}
func (BaseObserver) RefreshingCanceled(context.Context, *RefreshingCanceledEvent) {}

func (BaseObserver) Activation(context.Context, *ActivationEvent)                 {}
func (BaseObserver) Activated(context.Context, *ActivatedEvent)                   {}
func (BaseObserver) ActivationFailed(context.Context, *ActivationFailedEvent)     {}
func (BaseObserver) ActivationCanceled(context.Context, *ActivationCanceledEvent) {}

// observerList is the ordered fan-out target for notifications.
type observerList struct {
	mu        sync.RWMutex
	observers []Observer
}

func (l *observerList) subscribe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.observers = append(l.observers, o)
}

// unsubscribe removes o by identity, preserving the order of the rest.
func (l *observerList) unsubscribe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.observers {
		if existing == o {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

// snapshot returns the observers in subscription order. Dispatch iterates a
// copy so observers may subscribe or unsubscribe from inside a handler.
func (l *observerList) snapshot() []Observer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Observer, len(l.observers))
	copy(out, l.observers)
	return out
}
