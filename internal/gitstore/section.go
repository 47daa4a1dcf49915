package gitstore

import (
	"fmt"
	"regexp"
	"strings"

	gitcfg "github.com/go-git/go-git/v5/config"
	format "github.com/go-git/go-git/v5/plumbing/format/config"

	"github.com/greened/git-project/pkg/types"
)

var _ types.Section = (*section)(nil)

// section is a handle on one dotted path. The first path segment is the
// git config section name, the remainder the subsection name, so
// "project.worktree.wt1" maps to [project "worktree.wt1"]. Every operation
// reads the repository config fresh and mutations write it straight back.
type section struct {
	store   *Store
	path    string
	secName string
	subName string
}

func newSection(s *Store, path string) *section {
	secName, subName := splitPath(path)
	return &section{store: s, path: path, secName: secName, subName: subName}
}

// splitPath splits a dotted path into git section and subsection names.
func splitPath(path string) (string, string) {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

func (s *section) Path() string { return s.path }

func (s *section) Get(key string) (string, error) {
	vals, err := s.Values(key)
	if err != nil {
		return "", err
	}
	switch len(vals) {
	case 0:
		return "", fmt.Errorf("%s.%s: %w", s.path, key, types.ErrNotSet)
	case 1:
		return vals[0], nil
	default:
		return "", fmt.Errorf("%s.%s: single-value get on multi-value key: %w",
			s.path, key, types.ErrStore)
	}
}

func (s *section) Values(key string) ([]string, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	opts := s.options(cfg.Raw)
	var values []string
	for _, o := range opts {
		if strings.EqualFold(o.Key, key) {
			values = append(values, o.Value)
		}
	}
	return values, nil
}

func (s *section) Keys() ([]string, error) {
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	var keys []string
	seen := make(map[string]struct{})
	for _, o := range s.options(cfg.Raw) {
		lower := strings.ToLower(o.Key)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		keys = append(keys, lower)
	}
	return keys, nil
}

func (s *section) Set(key, value string) error {
	return s.mutate(func(opts format.Options) format.Options {
		out := withoutKey(opts, key)
		return append(out, &format.Option{Key: key, Value: value})
	})
}

func (s *section) Add(key, value string) error {
	return s.mutate(func(opts format.Options) format.Options {
		for _, o := range opts {
			if strings.EqualFold(o.Key, key) && o.Value == value {
				return opts
			}
		}
		return append(opts, &format.Option{Key: key, Value: value})
	})
}

func (s *section) RemoveMatching(key, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w: %w", pattern, types.ErrStore, err)
	}
	return s.mutate(func(opts format.Options) format.Options {
		out := opts[:0]
		for _, o := range opts {
			if strings.EqualFold(o.Key, key) && re.MatchString(o.Value) {
				continue
			}
			out = append(out, o)
		}
		return out
	})
}

func (s *section) RemoveAll(key string) error {
	return s.mutate(func(opts format.Options) format.Options {
		return withoutKey(opts, key)
	})
}

func (s *section) IsEmpty() (bool, error) {
	cfg, err := s.load()
	if err != nil {
		return false, err
	}
	return len(s.options(cfg.Raw)) == 0, nil
}

// load reads the repository-local config.
func (s *section) load() (*gitcfg.Config, error) {
	cfg, err := s.store.repo.Config()
	if err != nil {
		return nil, storeErr("read config", err)
	}
	return cfg, nil
}

// options returns the option list at this path, nil when the section or
// subsection does not exist.
func (s *section) options(raw *format.Config) format.Options {
	sec := findSection(raw, s.secName)
	if sec == nil {
		return nil
	}
	if s.subName == "" {
		return sec.Options
	}
	if sub := findSubsection(sec, s.subName); sub != nil {
		return sub.Options
	}
	return nil
}

// mutate applies fn to this path's options, creating the section and
// subsection as needed, prunes emptied nodes, and writes the config back.
func (s *section) mutate(fn func(format.Options) format.Options) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	raw := cfg.Raw

	sec := findSection(raw, s.secName)
	if sec == nil {
		sec = &format.Section{Name: s.secName}
		raw.Sections = append(raw.Sections, sec)
	}
	if s.subName == "" {
		sec.Options = fn(sec.Options)
	} else {
		sub := findSubsection(sec, s.subName)
		if sub == nil {
			sub = &format.Subsection{Name: s.subName}
			sec.Subsections = append(sec.Subsections, sub)
		}
		sub.Options = fn(sub.Options)
	}
	prune(raw, s.secName)

	if err := s.store.repo.SetConfig(cfg); err != nil {
		return storeErr("write config", err)
	}
	return nil
}

func findSection(raw *format.Config, name string) *format.Section {
	for _, sec := range raw.Sections {
		if sec.IsName(name) {
			return sec
		}
	}
	return nil
}

func findSubsection(sec *format.Section, name string) *format.Subsection {
	for _, sub := range sec.Subsections {
		if sub.IsName(name) {
			return sub
		}
	}
	return nil
}

func withoutKey(opts format.Options, key string) format.Options {
	out := opts[:0]
	for _, o := range opts {
		if strings.EqualFold(o.Key, key) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// prune drops emptied subsections under name, and the section itself once
// it has no options and no subsections left.
func prune(raw *format.Config, name string) {
	sec := findSection(raw, name)
	if sec == nil {
		return
	}
	subs := sec.Subsections[:0]
	for _, sub := range sec.Subsections {
		if len(sub.Options) > 0 {
			subs = append(subs, sub)
		}
	}
	sec.Subsections = subs

	if len(sec.Options) > 0 || len(sec.Subsections) > 0 {
		return
	}
	sections := raw.Sections[:0]
	for _, candidate := range raw.Sections {
		if candidate != sec {
			sections = append(sections, candidate)
		}
	}
	raw.Sections = sections
}
