// Package config implements configuration objects backed by a property
// store. An Object owns a set of schema-described, possibly multi-valued
// properties persisted under a dotted section path. A Scoped object adds a
// dynamic scope chain that lets pushed child objects shadow property
// lookups, and Substitute expands {name} templates through scoped lookup,
// caller overrides, and repository built-ins.
package config
