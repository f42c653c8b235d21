package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projectkit/internal/logging"
)

// Metric label values for manager operations.
const (
	opLoad     = "load"
	opSave     = "save"
	opClose    = "close"
	opRefresh  = "refresh"
	opActivate = "activate"

	outcomeOK       = "ok"
	outcomeFailed   = "failed"
	outcomeCanceled = "canceled"
)

// Manager sequences project lifecycle transitions. See the package doc for
// the state machine and locking model.
type Manager struct {
	mode        ManagementMode
	validator   Validator
	upgrader    Upgrader
	serializers SerializerSelector
	refreshers  RefresherSelector
	initializer Initializer

	log     *logging.Logger
	metrics *Metrics

	observers observerList
	registry  *registry
	states    *stateTracker

	// loadMu serializes all loads regardless of location; activateMu
	// serializes active-project switches. Refresh and Close take neither.
	loadMu     sync.Mutex
	activateMu sync.Mutex

	// loading and saving suppress refresher-triggered refreshes while the
	// manager itself is the source of the observed filesystem change.
	loading atomic.Bool
	saving  atomic.Int32

	mu      sync.RWMutex // guards active and handles
	active  *Project
	handles map[string]Refresher
}

// Option configures a Manager.
type Option func(*Manager)

// WithMode sets the management mode. The default is MultipleDocuments.
func WithMode(mode ManagementMode) Option {
	return func(m *Manager) { m.mode = mode }
}

// WithValidator sets the load validator.
func WithValidator(v Validator) Option {
	return func(m *Manager) { m.validator = v }
}

// WithUpgrader sets the location upgrader.
func WithUpgrader(u Upgrader) Option {
	return func(m *Manager) { m.upgrader = u }
}

// WithRefresherSelector sets the external-change refresher selector.
func WithRefresherSelector(s RefresherSelector) Option {
	return func(m *Manager) { m.refreshers = s }
}

// WithInitializer sets the startup location initializer used by LoadInitial.
func WithInitializer(i Initializer) Option {
	return func(m *Manager) { m.initializer = i }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *logging.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithMetrics enables Prometheus metrics collection.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a manager over the given serializer selector. The
// selector is the only mandatory collaborator; everything else defaults to
// absent.
func NewManager(serializers SerializerSelector, opts ...Option) (*Manager, error) {
	if serializers == nil {
		return nil, errors.New("lifecycle: serializer selector is required")
	}

	m := &Manager{
		mode:        MultipleDocuments,
		serializers: serializers,
		log:         logging.NewNop(),
		registry:    newRegistry(),
		states:      newStateTracker(),
		handles:     make(map[string]Refresher),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Mode returns the management mode the manager was built with.
func (m *Manager) Mode() ManagementMode {
	return m.mode
}

// Projects returns a snapshot of the registered projects in insertion order.
func (m *Manager) Projects() []*Project {
	return m.registry.list()
}

// ActiveProject returns the project currently in focus, or nil.
func (m *Manager) ActiveProject() *Project {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.active
}

// State returns a snapshot of the per-location transition flags.
func (m *Manager) State(location string) ProjectState {
	return m.states.get(location)
}

// Subscribe appends o to the notification fan-out. Notifications are
// delivered in subscription order.
func (m *Manager) Subscribe(o Observer) {
	m.observers.subscribe(o)
}

// Unsubscribe removes o from the fan-out.
func (m *Manager) Unsubscribe(o Observer) {
	m.observers.unsubscribe(o)
}

func (m *Manager) each(fn func(Observer)) {
	for _, o := range m.observers.snapshot() {
		fn(o)
	}
}

// Load reads the project at location, registers it, and makes it active. If
// a project for the location is already registered it is returned as is,
// without re-reading.
//
// An observer veto returns (nil, nil) after LoadingCanceled. Validation and
// read failures return the error after LoadingFailed. A missing reader
// returns a *ConfigError with no event: that is missing wiring, not a
// data-level failure.
func (m *Manager) Load(ctx context.Context, location string) (*Project, error) {
	return m.load(ctx, location, true)
}

// LoadInactive is Load without the activation side effect.
func (m *Manager) LoadInactive(ctx context.Context, location string) (*Project, error) {
	return m.load(ctx, location, false)
}

func (m *Manager) load(ctx context.Context, location string, activate bool) (*Project, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	// Idempotent short-circuit. The load lock makes this lookup and the
	// registration below atomic with respect to concurrent loads, so two
	// racing Load("A") calls produce exactly one read.
	if p := m.registry.get(location); p != nil {
		return p, nil
	}

	m.loading.Store(true)
	defer m.loading.Store(false)

	if m.upgrader != nil && m.upgrader.RequiresUpgrade(ctx, location) {
		upgraded, err := m.upgrader.Upgrade(ctx, location)
		if err != nil {
			err = fmt.Errorf("upgrading %q: %w", location, err)
			m.emitLoadingFailed(ctx, location, err, ValidationResult{})
			m.countOp(opLoad, outcomeFailed)
			return nil, err
		}
		m.log.Info(ctx, "location upgraded",
			zap.String("from", location), zap.String("to", upgraded))
		location = upgraded

		// The upgraded location may itself already be registered.
		if p := m.registry.get(location); p != nil {
			return p, nil
		}
	}

	m.states.update(location, func(s *ProjectState) { s.Loading = true })
	defer m.states.update(location, func(s *ProjectState) { s.Loading = false })

	evt := &LoadingEvent{Location: location}
	m.each(func(o Observer) { o.Loading(ctx, evt) })
	if evt.Cancel {
		m.log.Debug(ctx, "load canceled by observer", zap.String("location", location))
		m.each(func(o Observer) {
			o.LoadingCanceled(ctx, &LoadingCanceledEvent{Location: location})
		})
		m.countOp(opLoad, outcomeCanceled)
		return nil, nil
	}

	if m.mode == SingleDocument && m.registry.len() > 0 {
		m.emitLoadingFailed(ctx, location, ErrSingleDocumentMode, ValidationResult{})
		m.countOp(opLoad, outcomeFailed)
		return nil, ErrSingleDocumentMode
	}

	if m.validator != nil {
		if !m.validator.CanStartLoading(ctx, location) {
			m.emitLoadingFailed(ctx, location, ErrLoadRejected, ValidationResult{})
			m.countOp(opLoad, outcomeFailed)
			return nil, ErrLoadRejected
		}
		if res := m.validator.ValidateBeforeLoading(ctx, location); !res.OK() {
			err := &ValidationError{Result: res}
			m.emitLoadingFailed(ctx, location, err, res)
			m.countOp(opLoad, outcomeFailed)
			return nil, err
		}
	}

	reader := m.serializers.Reader(location)
	if reader == nil {
		return nil, &ConfigError{What: "reader", Location: location}
	}

	p, err := reader.Read(ctx, location)
	if err != nil {
		err = fmt.Errorf("reading %q: %w", location, err)
		m.emitLoadingFailed(ctx, location, err, ValidationResult{})
		m.countOp(opLoad, outcomeFailed)
		return nil, err
	}

	if m.validator != nil {
		if res := m.validator.ValidateLoaded(ctx, p); !res.OK() {
			err := &ValidationError{Result: res}
			m.emitLoadingFailed(ctx, location, err, res)
			m.countOp(opLoad, outcomeFailed)
			return nil, err
		}
	}

	m.register(ctx, p)
	m.log.Info(ctx, "project loaded", zap.String("location", p.Location))
	m.each(func(o Observer) { o.Loaded(ctx, &LoadedEvent{Project: p}) })
	m.countOp(opLoad, outcomeOK)

	if activate {
		// Activation is a side effect of Load; a veto of the activation
		// does not undo the load.
		if _, err := m.SetActive(ctx, p); err != nil {
			m.log.Warn(ctx, "activation after load failed",
				zap.String("location", p.Location), zap.Error(err))
		}
	}

	return p, nil
}

// Save writes p to location. A nil p saves the active project; an empty
// location saves to the project's own location. With no project to save it
// returns ErrNoActiveProject and fires no event: there is nothing to cancel.
func (m *Manager) Save(ctx context.Context, p *Project, location string) (bool, error) {
	if p == nil {
		p = m.ActiveProject()
	}
	if p == nil {
		m.log.Warn(ctx, "save requested with no project")
		return false, ErrNoActiveProject
	}
	if location == "" {
		location = p.Location
	}

	// The counter, not a flag: overlapping saves of different projects must
	// not unsuppress each other's refreshers early.
	m.saving.Add(1)
	defer m.saving.Add(-1)

	m.states.update(location, func(s *ProjectState) { s.Saving = true })
	defer m.states.update(location, func(s *ProjectState) { s.Saving = false })

	evt := &SavingEvent{Project: p, Location: location}
	m.each(func(o Observer) { o.Saving(ctx, evt) })
	if evt.Cancel {
		m.each(func(o Observer) {
			o.SavingCanceled(ctx, &SavingCanceledEvent{Project: p, Location: location})
		})
		m.countOp(opSave, outcomeCanceled)
		return false, nil
	}

	writer := m.serializers.Writer(location)
	if writer == nil {
		return false, &ConfigError{What: "writer", Location: location}
	}

	ok, err := writer.Write(ctx, p, location)
	if err != nil {
		err = fmt.Errorf("writing %q: %w", location, err)
		m.log.Warn(ctx, "save failed", zap.String("location", location), zap.Error(err))
		m.each(func(o Observer) {
			o.SavingFailed(ctx, &SavingFailedEvent{Project: p, Location: location, Err: err})
		})
		m.countOp(opSave, outcomeFailed)
		return false, err
	}
	if !ok {
		// Declined without an error; the failed event carries no Err.
		m.log.Warn(ctx, "save rejected by writer", zap.String("location", location))
		m.each(func(o Observer) {
			o.SavingFailed(ctx, &SavingFailedEvent{Project: p, Location: location})
		})
		m.countOp(opSave, outcomeFailed)
		return false, ErrWriteRejected
	}

	p.UpdatedAt = time.Now()
	m.log.Info(ctx, "project saved", zap.String("location", location))
	m.each(func(o Observer) {
		o.Saved(ctx, &SavedEvent{Project: p, Location: location})
	})
	m.countOp(opSave, outcomeOK)
	return true, nil
}

// Close unregisters p, deactivating it first when it is the active project.
// A nil p closes the active project; none registered is a no-op.
func (m *Manager) Close(ctx context.Context, p *Project) (bool, error) {
	if p == nil {
		p = m.ActiveProject()
	}
	if p == nil {
		return false, nil
	}

	m.states.update(p.Location, func(s *ProjectState) { s.Closing = true })
	defer m.states.update(p.Location, func(s *ProjectState) { s.Closing = false })

	evt := &ClosingEvent{Project: p}
	m.each(func(o Observer) { o.Closing(ctx, evt) })
	if evt.Cancel {
		m.each(func(o Observer) {
			o.ClosingCanceled(ctx, &ClosingCanceledEvent{Project: p})
		})
		m.countOp(opClose, outcomeCanceled)
		return false, nil
	}

	if m.isActive(p) {
		if _, err := m.SetActive(ctx, nil); err != nil {
			return false, err
		}
		if m.isActive(p) {
			// An observer vetoed the deactivation; the close is abandoned
			// with the project still registered and active.
			m.each(func(o Observer) {
				o.ClosingCanceled(ctx, &ClosingCanceledEvent{Project: p})
			})
			m.countOp(opClose, outcomeCanceled)
			return false, nil
		}
	}

	m.unregister(ctx, p)
	m.log.Info(ctx, "project closed", zap.String("location", p.Location))
	m.each(func(o Observer) { o.Closed(ctx, &ClosedEvent{Project: p}) })
	m.countOp(opClose, outcomeOK)
	return true, nil
}

// Refresh re-reads p's backing data, replacing the registered instance while
// preserving its location identity and activation status. A nil p refreshes
// the active project; none registered is a no-op.
//
// The old instance is unregistered before the re-read, so a failed refresh
// leaves the location unregistered rather than stale.
func (m *Manager) Refresh(ctx context.Context, p *Project) (bool, error) {
	if p == nil {
		p = m.ActiveProject()
	}
	if p == nil {
		return false, nil
	}
	location := p.Location

	m.states.update(location, func(s *ProjectState) { s.Refreshing = true })
	defer m.states.update(location, func(s *ProjectState) { s.Refreshing = false })

	evt := &RefreshingEvent{Project: p}
	m.each(func(o Observer) { o.Refreshing(ctx, evt) })
	if evt.Cancel {
		m.each(func(o Observer) {
			o.RefreshingCanceled(ctx, &RefreshingCanceledEvent{Project: p})
		})
		m.countOp(opRefresh, outcomeCanceled)
		return false, nil
	}

	wasActive := m.isActive(p)
	if wasActive {
		if _, err := m.SetActive(ctx, nil); err != nil {
			return false, err
		}
		if m.isActive(p) {
			// Deactivation vetoed: abandon the refresh, project intact.
			m.each(func(o Observer) {
				o.RefreshingCanceled(ctx, &RefreshingCanceledEvent{Project: p})
			})
			m.countOp(opRefresh, outcomeCanceled)
			return false, nil
		}
	}

	// Unregister before reading so a mid-refresh failure cannot leave two
	// entries for one location.
	m.unregister(ctx, p)

	// Refresh reuses the pre-load and post-load gates but skips
	// CanStartLoading: the project is known to exist.
	if m.validator != nil {
		if res := m.validator.ValidateBeforeLoading(ctx, location); !res.OK() {
			err := &ValidationError{Result: res}
			m.emitRefreshingFailed(ctx, location, err, res)
			m.countOp(opRefresh, outcomeFailed)
			return false, err
		}
	}

	reader := m.serializers.Reader(location)
	if reader == nil {
		return false, &ConfigError{What: "reader", Location: location}
	}

	fresh, err := reader.Read(ctx, location)
	if err != nil {
		err = fmt.Errorf("re-reading %q: %w", location, err)
		m.emitRefreshingFailed(ctx, location, err, ValidationResult{})
		m.countOp(opRefresh, outcomeFailed)
		return false, err
	}

	if m.validator != nil {
		if res := m.validator.ValidateLoaded(ctx, fresh); !res.OK() {
			err := &ValidationError{Result: res}
			m.emitRefreshingFailed(ctx, location, err, res)
			m.countOp(opRefresh, outcomeFailed)
			return false, err
		}
	}

	m.register(ctx, fresh)
	m.log.Info(ctx, "project refreshed", zap.String("location", location))
	m.each(func(o Observer) { o.Refreshed(ctx, &RefreshedEvent{Old: p, New: fresh}) })
	m.countOp(opRefresh, outcomeOK)

	if wasActive {
		if _, err := m.SetActive(ctx, fresh); err != nil {
			m.log.Warn(ctx, "reactivation after refresh failed",
				zap.String("location", location), zap.Error(err))
		}
	}

	return true, nil
}

// SetActive makes p the active project; a nil p deactivates the current
// one. The target must already be registered: activating an unregistered
// project is rejected, not auto-registered. Activating the already-active
// project is a no-op with no event.
func (m *Manager) SetActive(ctx context.Context, p *Project) (bool, error) {
	m.activateMu.Lock()
	defer m.activateMu.Unlock()

	cur := m.ActiveProject()

	if p == nil {
		if cur == nil {
			return false, nil
		}
		return m.deactivate(ctx, cur)
	}

	if m.registry.get(p.Location) == nil {
		m.log.Warn(ctx, "activation of unregistered project rejected",
			zap.String("location", p.Location))
		return false, ErrNotRegistered
	}
	if cur != nil && SameLocation(cur.Location, p.Location) {
		return false, nil
	}

	m.states.update(p.Location, func(s *ProjectState) { s.Activating = true })
	defer m.states.update(p.Location, func(s *ProjectState) { s.Activating = false })
	if cur != nil {
		m.states.update(cur.Location, func(s *ProjectState) { s.Deactivating = true })
		defer m.states.update(cur.Location, func(s *ProjectState) { s.Deactivating = false })
	}

	evt := &ActivationEvent{Old: cur, New: p}
	m.each(func(o Observer) { o.Activation(ctx, evt) })
	if evt.Cancel {
		m.each(func(o Observer) {
			o.ActivationCanceled(ctx, &ActivationCanceledEvent{Old: cur, New: p})
		})
		m.countOp(opActivate, outcomeCanceled)
		return false, nil
	}

	// An observer may have closed the target during the fan-out; committing
	// would break the active-pointer-in-registry invariant.
	if m.registry.get(p.Location) == nil {
		err := fmt.Errorf("activating %q: %w", p.Location, ErrNotRegistered)
		m.each(func(o Observer) {
			o.ActivationFailed(ctx, &ActivationFailedEvent{Old: cur, New: p, Err: err})
		})
		m.countOp(opActivate, outcomeFailed)
		return false, err
	}

	m.mu.Lock()
	m.active = p
	m.mu.Unlock()

	m.log.Info(ctx, "project activated", zap.String("location", p.Location))
	m.each(func(o Observer) { o.Activated(ctx, &ActivatedEvent{Old: cur, New: p}) })
	m.countOp(opActivate, outcomeOK)
	return true, nil
}

// deactivate clears the active pointer. Called with activateMu held.
func (m *Manager) deactivate(ctx context.Context, cur *Project) (bool, error) {
	m.states.update(cur.Location, func(s *ProjectState) { s.Deactivating = true })
	defer m.states.update(cur.Location, func(s *ProjectState) { s.Deactivating = false })

	evt := &ActivationEvent{Old: cur}
	m.each(func(o Observer) { o.Activation(ctx, evt) })
	if evt.Cancel {
		m.each(func(o Observer) {
			o.ActivationCanceled(ctx, &ActivationCanceledEvent{Old: cur})
		})
		m.countOp(opActivate, outcomeCanceled)
		return false, nil
	}

	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()

	m.log.Info(ctx, "project deactivated", zap.String("location", cur.Location))
	m.each(func(o Observer) { o.Activated(ctx, &ActivatedEvent{Old: cur}) })
	m.countOp(opActivate, outcomeOK)
	return true, nil
}

// LoadInitial loads every location reported by the configured initializer.
// Individual failures do not abort the batch; they are logged and returned
// joined. Without an initializer it is a no-op.
func (m *Manager) LoadInitial(ctx context.Context) error {
	if m.initializer == nil {
		return nil
	}

	locations, err := m.initializer.InitialLocations(ctx)
	if err != nil {
		return fmt.Errorf("resolving initial locations: %w", err)
	}

	var errs []error
	for _, loc := range locations {
		if _, err := m.Load(ctx, loc); err != nil {
			m.log.Warn(ctx, "initial load failed",
				zap.String("location", loc), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", loc, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) isActive(p *Project) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.active != nil && SameLocation(m.active.Location, p.Location)
}

// register inserts p into the registry and binds its refresher.
func (m *Manager) register(ctx context.Context, p *Project) {
	m.registry.add(p)
	m.trackRegistrySize()

	if m.refreshers == nil {
		return
	}
	r := m.refreshers.Refresher(p.Location)
	if r == nil {
		return
	}
	if err := r.Subscribe(m.onExternalChange); err != nil {
		m.log.Warn(ctx, "refresher subscribe failed",
			zap.String("location", p.Location), zap.Error(err))
		return
	}

	m.mu.Lock()
	m.handles[NormalizeLocation(p.Location)] = r
	m.mu.Unlock()
}

// unregister removes p from the registry and tears down its refresher. The
// teardown runs exactly once per registration and never blocks removal on a
// misbehaving refresher.
func (m *Manager) unregister(ctx context.Context, p *Project) {
	m.registry.remove(p.Location)
	m.trackRegistrySize()

	key := NormalizeLocation(p.Location)
	m.mu.Lock()
	r, ok := m.handles[key]
	delete(m.handles, key)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := r.Unsubscribe(); err != nil {
		m.log.Warn(ctx, "refresher unsubscribe failed",
			zap.String("location", p.Location), zap.Error(err))
	}
}

// onExternalChange handles a refresher's update notification. Changes
// observed while the manager itself is loading or saving are its own writes
// and are dropped.
func (m *Manager) onExternalChange(location string) {
	ctx := context.Background()

	if m.loading.Load() || m.saving.Load() > 0 {
		m.log.Debug(ctx, "external change suppressed", zap.String("location", location))
		m.countExternal("suppressed")
		return
	}

	p := m.registry.get(location)
	if p == nil {
		return
	}

	m.countExternal("refresh")
	if _, err := m.Refresh(ctx, p); err != nil {
		m.log.Warn(ctx, "external refresh failed",
			zap.String("location", location), zap.Error(err))
	}
}

func (m *Manager) emitLoadingFailed(ctx context.Context, location string, err error, res ValidationResult) {
	m.log.Warn(ctx, "load failed", zap.String("location", location), zap.Error(err))
	m.each(func(o Observer) {
		o.LoadingFailed(ctx, &LoadingFailedEvent{Location: location, Err: err, Validation: res})
	})
}

func (m *Manager) emitRefreshingFailed(ctx context.Context, location string, err error, res ValidationResult) {
	m.log.Warn(ctx, "refresh failed", zap.String("location", location), zap.Error(err))
	m.each(func(o Observer) {
		o.RefreshingFailed(ctx, &RefreshingFailedEvent{Location: location, Err: err, Validation: res})
	})
}

func (m *Manager) countOp(op, outcome string) {
	if m.metrics != nil {
		m.metrics.OperationsTotal.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Manager) countExternal(action string) {
	if m.metrics != nil {
		m.metrics.ExternalChangesTotal.WithLabelValues(action).Inc()
	}
}

func (m *Manager) trackRegistrySize() {
	if m.metrics != nil {
		m.metrics.RegisteredProjects.Set(float64(m.registry.len()))
	}
}
