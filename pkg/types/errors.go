package types

import "errors"

// Property and scope resolution errors.
var (
	// ErrNotSet reports a read of a property that has no values after
	// full resolution, including resolution through a scope chain.
	ErrNotSet = errors.New("property not set")

	// ErrEmptyScope reports a pop on a scope chain with no delegate.
	ErrEmptyScope = errors.New("scope chain is empty")
)

// Substitution errors.
var (
	// ErrUnresolvedToken reports a {name} token that no override, scoped
	// property, or repository built-in resolves.
	ErrUnresolvedToken = errors.New("unresolved substitution token")

	// ErrMalformedTemplate reports unbalanced or empty placeholder syntax.
	ErrMalformedTemplate = errors.New("malformed template")
)

// Backing-store errors.
var (
	// ErrStore wraps failures from the backing store. Store
	// implementations return errors matching errors.Is(err, ErrStore).
	ErrStore = errors.New("store error")

	// ErrNoRepo reports a write attempted against a store with no
	// backing repository attached.
	ErrNoRepo = errors.New("no repository")
)
