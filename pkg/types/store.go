package types

// Store persists named, possibly multi-valued properties under dotted
// section paths. Writes are synchronous; a value written through a Section
// is visible on the next read. Implementations are not safe for concurrent
// use without external locking.
type Store interface {
	// HasRepo reports whether the store is attached to a real backing
	// repository. Object construction applies schema defaults only when
	// this is true.
	HasRepo() bool

	// GetSection returns a handle for an existing, non-empty section,
	// or nil when the section is absent.
	GetSection(path string) (Section, error)

	// OpenSection returns a handle for the section, creating it on
	// first write. Returns ErrNoRepo when the store is detached.
	OpenSection(path string) (Section, error)
}

// Section is a handle on one dotted section path. Each key maps to a
// deduplicated set of string values; a key with zero values is absent.
type Section interface {
	// Path returns the full dotted section path.
	Path() string

	// Get returns the single value of key. Returns ErrNotSet when the
	// key is absent and an ErrStore-wrapped error when the key holds
	// more than one value.
	Get(key string) (string, error)

	// Values returns all values of key. The result is empty, never an
	// error, when the key is absent.
	Values(key string) ([]string, error)

	// Keys returns the keys that currently hold at least one value.
	Keys() ([]string, error)

	// Set replaces the entire value set of key with value.
	Set(key, value string) error

	// Add adds value to key's set. Adding an existing value is a no-op
	// and must not create a duplicate persisted entry.
	Add(key, value string) error

	// RemoveMatching removes the values of key matching the regular
	// expression pattern, leaving other values intact. Removing the
	// last value removes the key.
	RemoveMatching(key, pattern string) error

	// RemoveAll removes key and all of its values.
	RemoveAll(key string) error

	// IsEmpty reports whether the section holds no values at all.
	IsEmpty() (bool, error)
}

// RepoContext supplies environment-derived substitution built-ins from the
// repository the store is attached to.
type RepoContext interface {
	// CurrentBranch returns the short name of the checked-out branch.
	CurrentBranch() (string, error)
}
