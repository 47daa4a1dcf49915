package sqlstore

import (
	"fmt"
	"regexp"

	"github.com/greened/git-project/pkg/types"
)

var _ types.Section = (*section)(nil)

// section is a handle on one section path. It holds no state beyond the
// path; every operation goes to the database.
type section struct {
	store *Store
	path  string
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
	rows, err := s.store.db.Query(
		`SELECT value FROM properties WHERE section = ? AND key = ? ORDER BY rowid`,
		s.path, key)
	if err != nil {
		return nil, storeErr("query values", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storeErr("scan value", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate values", err)
	}
	return values, nil
}

func (s *section) Keys() ([]string, error) {
	rows, err := s.store.db.Query(
		`SELECT DISTINCT key FROM properties WHERE section = ? ORDER BY rowid`,
		s.path)
	if err != nil {
		return nil, storeErr("query keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, storeErr("scan key", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate keys", err)
	}
	return keys, nil
}

func (s *section) Set(key, value string) error {
	tx, err := s.store.db.Begin()
	if err != nil {
		return storeErr("begin set", err)
	}
	if _, err := tx.Exec(
		`DELETE FROM properties WHERE section = ? AND key = ?`,
		s.path, key); err != nil {
		tx.Rollback()
		return storeErr("clear key", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO properties (id, section, key, value) VALUES (?, ?, ?, ?)`,
		newID(), s.path, key, value); err != nil {
		tx.Rollback()
		return storeErr("insert value", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit set", err)
	}
	return nil
}

func (s *section) Add(key, value string) error {
	_, err := s.store.db.Exec(
		`INSERT OR IGNORE INTO properties (id, section, key, value) VALUES (?, ?, ?, ?)`,
		newID(), s.path, key, value)
	if err != nil {
		return storeErr("add value", err)
	}
	return nil
}

func (s *section) RemoveMatching(key, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w: %w", pattern, types.ErrStore, err)
	}
	values, err := s.Values(key)
	if err != nil {
		return err
	}
	for _, v := range values {
		if !re.MatchString(v) {
			continue
		}
		if _, err := s.store.db.Exec(
			`DELETE FROM properties WHERE section = ? AND key = ? AND value = ?`,
			s.path, key, v); err != nil {
			return storeErr("remove value", err)
		}
	}
	return nil
}

func (s *section) RemoveAll(key string) error {
	if _, err := s.store.db.Exec(
		`DELETE FROM properties WHERE section = ? AND key = ?`,
		s.path, key); err != nil {
		return storeErr("remove key", err)
	}
	return nil
}

func (s *section) IsEmpty() (bool, error) {
	var n int
	err := s.store.db.QueryRow(
		`SELECT COUNT(*) FROM properties WHERE section = ?`, s.path).Scan(&n)
	if err != nil {
		return false, storeErr("count section", err)
	}
	return n == 0, nil
}
