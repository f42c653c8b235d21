package lifecycle

import "context"

// ManagementMode constrains how many projects may be registered at once.
// The mode is fixed for the manager's lifetime.
type ManagementMode int

const (
	// MultipleDocuments allows any number of registered projects.
	MultipleDocuments ManagementMode = iota

	// SingleDocument allows at most one registered project; a second Load is
	// rejected with ErrSingleDocumentMode.
	SingleDocument
)

// String returns the mode name.
func (m ManagementMode) String() string {
	switch m {
	case SingleDocument:
		return "single"
	default:
		return "multiple"
	}
}

// Validator gates loads before and after reading.
type Validator interface {
	// CanStartLoading reports whether a load of location may begin at all.
	// Refresh bypasses this gate: the project is known to exist.
	CanStartLoading(ctx context.Context, location string) bool

	// ValidateBeforeLoading inspects the location before the reader runs.
	ValidateBeforeLoading(ctx context.Context, location string) ValidationResult

	// ValidateLoaded inspects the project produced by the reader.
	ValidateLoaded(ctx context.Context, p *Project) ValidationResult
}

// Upgrader migrates old-format locations to the current format before a
// load. The manager adopts the upgraded location for all subsequent steps.
type Upgrader interface {
	RequiresUpgrade(ctx context.Context, location string) bool
	Upgrade(ctx context.Context, location string) (string, error)
}

// Reader materializes a project from its location.
type Reader interface {
	Read(ctx context.Context, location string) (*Project, error)
}

// Writer persists a project to a location. A false return without an error
// means the writer declined the write; the manager reports that as a plain
// failure carrying no error payload.
type Writer interface {
	Write(ctx context.Context, p *Project, location string) (bool, error)
}

// SerializerSelector maps a location to its reader/writer pair. A nil return
// means no serializer handles the location, which the manager treats as a
// fatal ConfigError.
type SerializerSelector interface {
	Reader(location string) Reader
	Writer(location string) Writer
}

// Refresher watches a single location for external modification and reports
// changes through the callback passed to Subscribe.
type Refresher interface {
	// Subscribe activates the refresher. onUpdate may be invoked from any
	// goroutine until Unsubscribe returns.
	Subscribe(onUpdate func(location string)) error

	// Unsubscribe deactivates the refresher. The manager calls it exactly
	// once per Subscribe and tolerates failure.
	Unsubscribe() error
}

// RefresherSelector maps a location to a refresher, or nil when the location
// is not watchable.
type RefresherSelector interface {
	Refresher(location string) Refresher
}

// Initializer supplies the locations to load at process start.
type Initializer interface {
	InitialLocations(ctx context.Context) ([]string, error)
}
