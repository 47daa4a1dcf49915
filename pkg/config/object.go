package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/greened/git-project/pkg/types"
)

// Object is a configuration object backed by one store section. Properties
// are written through to the store synchronously and read back from it on
// every access; the object itself holds only its address and the table of
// declared property keys.
type Object struct {
	store          types.Store
	projectSection string
	subsection     string
	ident          string
	section        string

	// Property table: declared keys in declaration order. A key is
	// declared by the schema, by persisted values found at construction,
	// or by the first Set/Add that touches it.
	keys    map[string]struct{}
	keyList []string
}

// FullSection joins the non-empty address components with dots into a
// section path.
func FullSection(projectSection, subsection, ident string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{projectSection, subsection, ident} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// New constructs an Object at (projectSection, subsection, ident). When the
// store has a backing repository, schema defaults are applied for keys with
// no persisted values, then overrides are applied on top: a string override
// replaces the key's value set, a []string override populates a multi-value
// key. Without a repository the object has no persisted properties at all.
func New(store types.Store, projectSection, subsection, ident string,
	schema types.Schema, overrides map[string]any) (*Object, error) {
	o := &Object{
		store:          store,
		projectSection: projectSection,
		subsection:     subsection,
		ident:          ident,
		section:        FullSection(projectSection, subsection, ident),
		keys:           make(map[string]struct{}),
	}
	for _, p := range schema {
		o.register(p.Key)
	}

	if !store.HasRepo() {
		return o, nil
	}

	sec, err := store.OpenSection(o.section)
	if err != nil {
		return nil, fmt.Errorf("open section %s: %w", o.section, err)
	}

	for _, p := range schema {
		if p.Default == nil {
			continue
		}
		vals, err := sec.Values(p.Key)
		if err != nil {
			return nil, err
		}
		if len(vals) > 0 {
			// Persisted values win over defaults.
			continue
		}
		if err := applyValue(sec, p.Key, p.Default); err != nil {
			return nil, err
		}
	}

	for key, value := range overrides {
		if err := applyValue(sec, key, value); err != nil {
			return nil, err
		}
		o.register(key)
	}

	if existing, err := store.GetSection(o.section); err != nil {
		return nil, err
	} else if existing != nil {
		persisted, err := existing.Keys()
		if err != nil {
			return nil, err
		}
		for _, key := range persisted {
			o.register(key)
		}
	}

	return o, nil
}

// applyValue writes an override or default: strings replace the value set,
// string slices populate a multi-value key.
func applyValue(sec types.Section, key string, value any) error {
	switch v := value.(type) {
	case string:
		return sec.Set(key, v)
	case []string:
		for _, item := range v {
			if err := sec.Add(key, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("property %s: unsupported value type %T", key, value)
	}
}

// Exists reports whether the store holds a non-empty section for the given
// address, independent of constructing an Object.
func Exists(store types.Store, projectSection, subsection, ident string) (bool, error) {
	sec, err := store.GetSection(FullSection(projectSection, subsection, ident))
	if err != nil {
		return false, err
	}
	return sec != nil, nil
}

// Section returns the full dotted section path of the object.
func (o *Object) Section() string { return o.section }

// Name returns the object's ident.
func (o *Object) Name() string { return o.ident }

// ProjectSection returns the leading address component.
func (o *Object) ProjectSection() string { return o.projectSection }

// Subsection returns the middle address component.
func (o *Object) Subsection() string { return o.subsection }

// Keys returns the declared property keys in declaration order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keyList))
	copy(out, o.keyList)
	return out
}

// Has reports whether key currently holds at least one persisted value.
func (o *Object) Has(key string) bool {
	vals, err := o.values(key)
	return err == nil && len(vals) > 0
}

// Get returns the property value for key: the single string when exactly
// one value is stored, the full []string set when more than one, or
// ErrNotSet when none.
func (o *Object) Get(key string) (any, error) {
	vals, err := o.values(key)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case 0:
		return nil, fmt.Errorf("%s.%s: %w", o.section, key, types.ErrNotSet)
	case 1:
		return vals[0], nil
	default:
		return vals, nil
	}
}

// GetString returns the property value for key as a single string. A
// multi-value key is joined with single spaces.
func (o *Object) GetString(key string) (string, error) {
	vals, err := o.values(key)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("%s.%s: %w", o.section, key, types.ErrNotSet)
	}
	return strings.Join(vals, " "), nil
}

// Values returns all values stored for key; empty when the key is absent.
func (o *Object) Values(key string) ([]string, error) {
	return o.values(key)
}

// Set replaces all stored values for key with value and persists
// immediately.
func (o *Object) Set(key, value string) error {
	sec, err := o.store.OpenSection(o.section)
	if err != nil {
		return err
	}
	if err := sec.Set(key, value); err != nil {
		return err
	}
	o.register(key)
	return nil
}

// Add adds value to key's set. Adding an existing value is a no-op at the
// storage layer.
func (o *Object) Add(key, value string) error {
	sec, err := o.store.OpenSection(o.section)
	if err != nil {
		return err
	}
	if err := sec.Add(key, value); err != nil {
		return err
	}
	o.register(key)
	return nil
}

// RemoveMatching removes the values of key matching the regular expression
// pattern, leaving other values intact.
func (o *Object) RemoveMatching(key, pattern string) error {
	sec, err := o.store.GetSection(o.section)
	if err != nil || sec == nil {
		return err
	}
	return sec.RemoveMatching(key, pattern)
}

// RemoveAll removes key and all of its values and drops it from the
// property table.
func (o *Object) RemoveAll(key string) error {
	sec, err := o.store.GetSection(o.section)
	if err != nil {
		return err
	}
	if sec != nil {
		if err := sec.RemoveAll(key); err != nil {
			return err
		}
	}
	o.unregister(key)
	return nil
}

// Destroy removes every declared property's values. Emptying the section
// removes it from the store entirely.
func (o *Object) Destroy() error {
	for _, key := range o.keyList {
		if err := o.RemoveMatching(key, ".*"); err != nil {
			return err
		}
	}
	o.keys = make(map[string]struct{})
	o.keyList = nil
	return nil
}

func (o *Object) values(key string) ([]string, error) {
	sec, err := o.store.GetSection(o.section)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, nil
	}
	return sec.Values(key)
}

func (o *Object) register(key string) {
	if _, ok := o.keys[key]; ok {
		return
	}
	o.keys[key] = struct{}{}
	o.keyList = append(o.keyList, key)
}

func (o *Object) unregister(key string) {
	if _, ok := o.keys[key]; !ok {
		return
	}
	delete(o.keys, key)
	for i, k := range o.keyList {
		if k == key {
			o.keyList = append(o.keyList[:i], o.keyList[i+1:]...)
			break
		}
	}
}

// errNotSet reports whether err is a not-set failure rather than a real
// store error.
func errNotSet(err error) bool {
	return errors.Is(err, types.ErrNotSet)
}
