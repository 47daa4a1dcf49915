package gitstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/greened/git-project/internal/gitstore"
	"github.com/greened/git-project/pkg/types"
)

// initRepo creates a repository with one commit so HEAD resolves.
func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}

	path := filepath.Join(dir, "README")
	if err := os.WriteFile(path, []byte("readme\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := wt.Add("README"); err != nil {
		t.Fatalf("add: %v", err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit("initial", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return dir, repo
}

func openAt(t *testing.T, dir string) *gitstore.Store {
	t.Helper()
	store, err := gitstore.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestOpenDetectsEnclosingRepository(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	store := openAt(t, sub)
	if !store.HasRepo() {
		t.Error("store did not find the enclosing repository")
	}
}

func TestOpenOutsideRepositoryIsDetached(t *testing.T) {
	store := openAt(t, t.TempDir())
	if store.HasRepo() {
		t.Fatal("store found a repository where none exists")
	}

	sec, err := store.GetSection("project")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if sec != nil {
		t.Error("detached store returned a section")
	}
	if _, err := store.OpenSection("project"); !errors.Is(err, types.ErrNoRepo) {
		t.Errorf("OpenSection error = %v, want ErrNoRepo", err)
	}
	if _, err := store.CurrentBranch(); !errors.Is(err, types.ErrNoRepo) {
		t.Errorf("CurrentBranch error = %v, want ErrNoRepo", err)
	}
}

func TestSetGetRoundtripThroughConfig(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project.worktree.wt1")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	if err := sec.Set("builddir", "/path/to/build"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh store over the same directory reads the persisted config.
	again := openAt(t, dir)
	read, err := again.GetSection("project.worktree.wt1")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if read == nil {
		t.Fatal("section not persisted")
	}
	got, err := read.Get("builddir")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "/path/to/build" {
		t.Errorf("Get = %q", got)
	}
}

func TestTopLevelSectionWithoutSubsection(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	if err := sec.Set("name", "myproject"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := sec.Get("name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "myproject" {
		t.Errorf("Get = %q", got)
	}
}

func TestAddKeepsMultipleValuesWithoutDuplicates(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project.myproject")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	for _, v := range []string{"devrel", "check-devrel", "devrel"} {
		if err := sec.Add("build", v); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	vals, err := sec.Values("build")
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if !reflect.DeepEqual(vals, []string{"devrel", "check-devrel"}) {
		t.Errorf("Values = %v", vals)
	}
}

func TestRemoveMatchingPrunesEmptiedSection(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project.worktree.wt1")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	if err := sec.Set("builddir", "/path"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := sec.RemoveMatching("builddir", ".*"); err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}

	got, err := store.GetSection("project.worktree.wt1")
	if err != nil {
		t.Fatalf("GetSection: %v", err)
	}
	if got != nil {
		t.Error("emptied section still present")
	}
}

func TestRemoveMatchingLeavesOtherValues(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project.myproject")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	for _, v := range []string{"alpha", "beta", "alphabet"} {
		if err := sec.Add("words", v); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := sec.RemoveMatching("words", "^alpha"); err != nil {
		t.Fatalf("RemoveMatching: %v", err)
	}

	vals, err := sec.Values("words")
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if !reflect.DeepEqual(vals, []string{"beta"}) {
		t.Errorf("Values = %v, want [beta]", vals)
	}
}

func TestKeysAreLowercasedAndDistinct(t *testing.T) {
	dir, _ := initRepo(t)
	store := openAt(t, dir)

	sec, err := store.OpenSection("project.myproject")
	if err != nil {
		t.Fatalf("OpenSection: %v", err)
	}
	if err := sec.Set("BuildDir", "/path"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := sec.Add("target", "debug"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := sec.Add("target", "release"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	keys, err := sec.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"builddir", "target"}) {
		t.Errorf("Keys = %v", keys)
	}

	// Option keys compare case-insensitively on read as well.
	got, err := sec.Get("builddir")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "/path" {
		t.Errorf("Get = %q", got)
	}
}

func TestCurrentBranch(t *testing.T) {
	dir, repo := initRepo(t)
	store := gitstore.FromRepository(repo)

	branch, err := store.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch == "" {
		t.Error("CurrentBranch returned an empty name")
	}

	// The reopened store agrees with the wrapped one.
	again := openAt(t, dir)
	b2, err := again.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if b2 != branch {
		t.Errorf("branch mismatch: %q vs %q", b2, branch)
	}
}
