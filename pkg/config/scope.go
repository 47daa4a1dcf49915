package config

import (
	"fmt"

	"github.com/greened/git-project/pkg/types"
)

// Scoped wraps an Object with a dynamic scope chain. Each link owns at most
// one delegate reference, forming a forward-only, acyclic linked list from
// the head the caller holds to the most recently pushed tail. Scoped reads
// resolve from the tail backward, so a pushed delegate's properties
// temporarily shadow the head's without mutating its stored values.
type Scoped struct {
	*Object

	child *Scoped
}

// NewScoped wraps o in an unlinked scope.
func NewScoped(o *Object) *Scoped {
	return &Scoped{Object: o}
}

// NewScopedObject constructs the Object and wraps it in one call.
func NewScopedObject(store types.Store, projectSection, subsection, ident string,
	schema types.Schema, overrides map[string]any) (*Scoped, error) {
	o, err := New(store, projectSection, subsection, ident, schema, overrides)
	if err != nil {
		return nil, err
	}
	return NewScoped(o), nil
}

// Delegate returns the link's own delegate, nil when unlinked. This is the
// chain-structural view; it does not resolve through the chain.
func (s *Scoped) Delegate() *Scoped { return s.child }

// PushScope walks to the current tail and attaches d there, regardless of
// which link it is called on.
func (s *Scoped) PushScope(d *Scoped) {
	tail := s
	for tail.child != nil {
		tail = tail.child
	}
	tail.child = d
}

// PopScope detaches and returns the current tail, transferring ownership to
// the caller. Returns ErrEmptyScope when the receiver has no delegate.
func (s *Scoped) PopScope() (*Scoped, error) {
	if s.child == nil {
		return nil, types.ErrEmptyScope
	}
	pred := s
	for pred.child.child != nil {
		pred = pred.child
	}
	tail := pred.child
	pred.child = nil
	return tail, nil
}

// Unscoped returns the property named key as defined directly on this
// link's object, bypassing chain resolution.
func (s *Scoped) Unscoped(key string) (any, error) {
	return s.Object.Get(key)
}

// Lookup resolves key through the chain, deepest delegate first, and
// returns the first definition found. Fails with ErrNotSet when no link
// defines key.
func (s *Scoped) Lookup(key string) (any, error) {
	links := s.chain()
	for i := len(links) - 1; i >= 0; i-- {
		v, err := links[i].Object.Get(key)
		if err == nil {
			return v, nil
		}
		if !errNotSet(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", key, types.ErrNotSet)
}

// LookupString resolves key like Lookup but joins multi-value sets into a
// single space-separated string.
func (s *Scoped) LookupString(key string) (string, error) {
	links := s.chain()
	for i := len(links) - 1; i >= 0; i-- {
		v, err := links[i].Object.GetString(key)
		if err == nil {
			return v, nil
		}
		if !errNotSet(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", key, types.ErrNotSet)
}

// chain returns the links from this one to the tail, in push order.
func (s *Scoped) chain() []*Scoped {
	var links []*Scoped
	for link := s; link != nil; link = link.child {
		links = append(links, link)
	}
	return links
}
