package types

// Property describes one configurable property of an object: its key, an
// optional default, and a human-readable description. Default is nil, a
// string, or a []string; a []string default populates a multi-value key.
// Property values are immutable once constructed.
type Property struct {
	Key         string
	Default     any
	Description string
}

// Schema is the ordered property sequence for an object type. Keys are
// unique within a schema. Schemas are immutable; With and Without return
// new sequences and never patch shared state.
type Schema []Property

// With returns a schema extended by p. Adding a key that is already
// present is a no-op.
func (s Schema) With(p Property) Schema {
	for _, item := range s {
		if item.Key == p.Key {
			return s
		}
	}
	out := make(Schema, len(s), len(s)+1)
	copy(out, s)
	return append(out, p)
}

// Without returns a schema with every property named key removed.
func (s Schema) Without(key string) Schema {
	out := make(Schema, 0, len(s))
	for _, item := range s {
		if item.Key == key {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Find returns the property named key and whether it exists.
func (s Schema) Find(key string) (Property, bool) {
	for _, item := range s {
		if item.Key == key {
			return item, true
		}
	}
	return Property{}, false
}

// Keys returns the schema's keys in declaration order.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, item := range s {
		keys[i] = item.Key
	}
	return keys
}
