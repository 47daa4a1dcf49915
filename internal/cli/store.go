package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/greened/git-project/internal/gitstore"
	"github.com/greened/git-project/internal/paths"
	"github.com/greened/git-project/internal/sqlstore"
	"github.com/greened/git-project/pkg/types"
)

// sqliteDBName is the database file created under the data directory.
const sqliteDBName = "gitproject.db"

// openStore selects and opens the backend named in config.yaml. The repo
// context is nil for backends with no repository. The caller must invoke
// the returned closer.
func openStore() (types.Store, types.RepoContext, func() error, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, nil, nil, err
	}

	switch backend := cfg.GetString(cfgKeyBackend); backend {
	case backendGitConfig:
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := gitstore.Open(cwd)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() error { return nil }, nil

	case backendSQLite:
		dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.GetString(cfgKeyDataDir))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve data dir: %w", err)
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := sqlstore.Open(filepath.Join(dataDir, sqliteDBName))
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q (want %s or %s)",
			backend, backendGitConfig, backendSQLite)
	}
}
