// Package lifecycle manages the lifecycle of projects: named, file-backed
// units of application state.
//
// State Machine:
//
// Per location, a project moves through
//
//	Unregistered -> Loading -> Registered -> {Saving|Refreshing|Activating|
//	Deactivating|Closing} -> Unregistered
//
// Registered is the stable steady state; Save, Refresh, activation changes,
// and Close all originate there and (Close excepted) return to it.
//
// Concurrency Model:
//
// Two process-wide locks cover the hot transitions: the load lock is held for
// the full duration of Load, serializing all loads regardless of location,
// and the activate lock is held for the full duration of SetActive. Refresh
// and Close take neither lock; they rely on the registry's and state
// tracker's internal guards for safe mutation. The registry doc comment
// notes the resulting coverage gap.
//
// A boolean loading flag and an integer saving counter suppress
// refresher-triggered refreshes while the manager itself is the source of
// the filesystem change being observed.
//
// Events:
//
// Every transition fans out a begin notification followed by exactly one of
// its failed, canceled, or completed counterparts. Begin notifications carry
// a mutable Cancel field; any observer may set it to veto the transition.
// Fan-out is sequential in subscription order with no timeout: a hung
// observer stalls the operation. See Observer.
//
// Collaborators:
//
// Reading and writing, validation, location upgrades, external-change
// watching, and startup location discovery are delegated to the interfaces
// in this package. Default implementations live in pkg/serializer,
// pkg/validator, pkg/refresher, and internal/config.
package lifecycle
