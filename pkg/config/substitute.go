package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/greened/git-project/pkg/types"
)

// Built-in token names supplied by the repository context.
const tokenBranch = "branch"

// Substitute expands every {name} token in template. Tokens resolve, in
// order, against: the overrides map; scoped property lookup on scope; the
// scope chain's own names in push order (a link whose subsection matches the
// token yields its ident, a link whose project section matches yields its
// section path); and repository built-ins ({branch} is the checked-out
// branch).
//
// Expansion is recursive: substituted values are re-scanned for further
// tokens. One visited map per call records each token's expansion; a token
// that would expand again to an identical value is emitted verbatim and not
// re-scanned. That policy deliberately truncates self-referential templates
// instead of looping.
//
// Substitute never mutates scope, overrides, or the backing store.
func Substitute(repo types.RepoContext, scope *Scoped,
	overrides map[string]string, template string) (string, error) {
	sub := &substitution{
		repo:      repo,
		scope:     scope,
		overrides: overrides,
		seen:      make(map[string]string),
	}
	return sub.expand(template)
}

// SubstituteValue reads the property named key from o and expands it
// against scope. The read path mirrors Substitute: multi-value keys are
// space-joined before expansion.
func (o *Object) SubstituteValue(repo types.RepoContext, scope *Scoped,
	overrides map[string]string, key string) (string, error) {
	raw, err := o.GetString(key)
	if err != nil {
		return "", err
	}
	return Substitute(repo, scope, overrides, raw)
}

// substitution carries the state of one top-level Substitute call.
type substitution struct {
	repo      types.RepoContext
	scope     *Scoped
	overrides map[string]string

	// seen maps each expanded token to the value it produced. A repeat
	// expansion yielding the same value terminates that position.
	seen map[string]string
}

func (sub *substitution) expand(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			b.WriteByte(s[i])
			continue
		}
		j := i + 1
		for j < len(s) && s[j] != '}' && s[j] != '{' {
			j++
		}
		if j >= len(s) || s[j] == '{' {
			return "", fmt.Errorf("unterminated token at offset %d: %w",
				i, types.ErrMalformedTemplate)
		}
		name := s[i+1 : j]
		if name == "" {
			return "", fmt.Errorf("empty token at offset %d: %w",
				i, types.ErrMalformedTemplate)
		}

		value, err := sub.resolve(name)
		if err != nil {
			return "", err
		}
		if prev, ok := sub.seen[name]; ok && prev == value {
			// Already expanded to this value once; treat it as
			// terminal rather than re-scanning it.
			b.WriteString(value)
		} else {
			sub.seen[name] = value
			expanded, err := sub.expand(value)
			if err != nil {
				return "", err
			}
			b.WriteString(expanded)
		}
		i = j
	}
	return b.String(), nil
}

func (sub *substitution) resolve(name string) (string, error) {
	if v, ok := sub.overrides[name]; ok {
		return v, nil
	}

	if sub.scope != nil {
		v, err := sub.scope.LookupString(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, types.ErrNotSet) {
			return "", err
		}

		// Name tokens match in push order so that a pushed delegate
		// sharing the head's leading section never hijacks it.
		for _, link := range sub.scope.chain() {
			if link.Subsection() == name {
				return link.Name(), nil
			}
			if link.ProjectSection() == name {
				return link.Section(), nil
			}
		}
	}

	if sub.repo != nil && name == tokenBranch {
		branch, err := sub.repo.CurrentBranch()
		if err != nil {
			return "", err
		}
		return branch, nil
	}

	return "", fmt.Errorf("{%s}: %w", name, types.ErrUnresolvedToken)
}
