// Package gitstore implements the property store on a git repository's
// config, addressing dotted section paths as git config sections and
// subsections. It also supplies the repository context for substitution
// built-ins.
package gitstore

import (
	"errors"
	"fmt"

	git "github.com/go-git/go-git/v5"

	"github.com/greened/git-project/pkg/types"
)

var (
	_ types.Store       = (*Store)(nil)
	_ types.RepoContext = (*Store)(nil)
)

// Store persists properties in the config of the enclosing git repository.
// A Store opened outside any repository is detached: it has no sections and
// rejects writes with ErrNoRepo.
type Store struct {
	repo *git.Repository
}

// Open discovers the repository enclosing dir, walking up like git does.
// A missing repository is not an error; it yields a detached store.
func Open(dir string) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return &Store{}, nil
		}
		return nil, storeErr("open repository", err)
	}
	return &Store{repo: repo}, nil
}

// FromRepository wraps an already-open repository.
func FromRepository(repo *git.Repository) *Store {
	return &Store{repo: repo}
}

// HasRepo reports whether a backing repository was found.
func (s *Store) HasRepo() bool { return s.repo != nil }

// GetSection returns a handle for path when the repository config holds at
// least one value under it, nil otherwise.
func (s *Store) GetSection(path string) (types.Section, error) {
	if s.repo == nil {
		return nil, nil
	}
	sec := newSection(s, path)
	empty, err := sec.IsEmpty()
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}
	return sec, nil
}

// OpenSection returns a handle for path; the section materializes in the
// config on first write.
func (s *Store) OpenSection(path string) (types.Section, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("open section %s: %w", path, types.ErrNoRepo)
	}
	return newSection(s, path), nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (s *Store) CurrentBranch() (string, error) {
	if s.repo == nil {
		return "", types.ErrNoRepo
	}
	head, err := s.repo.Head()
	if err != nil {
		return "", storeErr("resolve HEAD", err)
	}
	return head.Name().Short(), nil
}

// storeErr wraps a backend failure so callers can match types.ErrStore.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrStore, err)
}
