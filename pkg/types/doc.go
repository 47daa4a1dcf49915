// Package types defines the Store and Section interfaces, the property
// schema value objects, and the standard error types for the git-project
// configuration system.
package types
