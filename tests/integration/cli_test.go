// CLI integration tests for git-project property management and stored
// command execution on the sqlite backend.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the git-project binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "git-project-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "git-project")
	SetGitProjectBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/git-project")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{Err: err, Output: string(output)})
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)

	os.Exit(code)
}

func TestVersion(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("version")
	assert.Contains(t, result.Stdout, "git-project v")
	assert.Contains(t, result.Stdout, "github.com/greened/git-project")
}

func TestInitCreatesConfigFile(t *testing.T) {
	env := newBareEnv(t)

	result := env.MustRun("init")
	assert.Contains(t, result.Stdout, "Initialized")

	data, err := os.ReadFile(filepath.Join(env.ConfigDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend:")
}

func TestConfigSetGetRoundtrip(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "builddir", "/path/to/build")

	result := env.MustRun("config", "builddir")
	assert.Equal(t, "/path/to/build\n", result.Stdout)
}

func TestConfigGetUnsetKeyFails(t *testing.T) {
	env := NewTestEnv(t)

	result := env.Run("config", "missing")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "missing is not set")
}

func TestConfigAddAccumulatesValues(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "--add", "targets", "debug")
	env.MustRun("config", "--add", "targets", "release")
	env.MustRun("config", "--add", "targets", "debug")

	result := env.MustRun("config", "targets")
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	assert.ElementsMatch(t, []string{"debug", "release"}, lines)
}

func TestConfigSetReplacesValueSet(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "--add", "targets", "debug")
	env.MustRun("config", "--add", "targets", "release")
	env.MustRun("config", "targets", "only")

	result := env.MustRun("config", "targets")
	assert.Equal(t, "only\n", result.Stdout)
}

func TestConfigUnset(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "builddir", "/path")
	env.MustRun("config", "--unset", "builddir")

	result := env.Run("config", "builddir")
	assert.Equal(t, 1, result.ExitCode)
}

func TestConfigUnsetWithPattern(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "--add", "build", "devrel")
	env.MustRun("config", "--add", "build", "check-devrel")
	env.MustRun("config", "--add", "build", "release")
	env.MustRun("config", "--unset", "--pattern", "devrel$", "build")

	result := env.MustRun("config", "build")
	assert.Equal(t, "release\n", result.Stdout)
}

func TestConfigList(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "builddir", "/path")
	env.MustRun("config", "--add", "targets", "debug")
	env.MustRun("config", "--add", "targets", "release")

	result := env.MustRun("config", "--list")
	assert.Contains(t, result.Stdout, "builddir = /path")
	assert.Contains(t, result.Stdout, "targets = debug")
	assert.Contains(t, result.Stdout, "targets = release")
}

func TestConfigListWithGlob(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "builddir", "/path")
	env.MustRun("config", "installdir", "/install")
	env.MustRun("config", "target", "debug")

	result := env.MustRun("config", "--list", "*dir")
	assert.Contains(t, result.Stdout, "builddir = /path")
	assert.Contains(t, result.Stdout, "installdir = /install")
	assert.NotContains(t, result.Stdout, "target = debug")
}

func TestRunDryRunSubstitutesProperties(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "builddir", "/path/to/build/{target}")
	env.MustRun("config", "target", "debug")
	env.MustRun("run", "build", "--set", "cd {builddir} && make {target}")

	result := env.MustRun("run", "build", "--dry-run")
	assert.Equal(t, "cd /path/to/build/debug && make debug\n", result.Stdout)
}

func TestRunDefineOverridesProperty(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "target", "debug")
	env.MustRun("run", "build", "--set", "make {target}")

	result := env.MustRun("run", "build", "--dry-run", "--define", "target=release")
	assert.Equal(t, "make release\n", result.Stdout)
}

func TestRunJSONDefinesWinOverDefines(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("run", "build", "--set", "make {target} {flavor}")

	result := env.MustRun("run", "build", "--dry-run",
		"--define", "target=debug",
		"--define", "flavor=quick",
		"--json-defines", `{"flavor": "full"}`)
	assert.Equal(t, "make debug full\n", result.Stdout)
}

func TestRunExecutesCommand(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("config", "greeting", "hello")
	env.MustRun("run", "greet", "--set", "echo {greeting}")

	result := env.MustRun("run", "greet")
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRunUnknownCommandSuggestsSet(t *testing.T) {
	env := NewTestEnv(t)

	result := env.Run("run", "nothing", "--dry-run")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "no command stored")
	assert.Contains(t, result.Stderr, "--set")
}

func TestRunUnresolvedTokenFails(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("run", "build", "--set", "make {nosuchtoken}")

	result := env.Run("run", "build", "--dry-run")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "nosuchtoken")
}

func TestRunMalformedDefineFails(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("run", "build", "--set", "make all")

	result := env.Run("run", "build", "--dry-run", "--define", "novalue")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "malformed --define")
}

func TestCustomProjectSection(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRun("--project", "myproj", "config", "key", "value")

	// The default project section does not see it.
	result := env.Run("config", "key")
	assert.Equal(t, 1, result.ExitCode)

	result = env.MustRun("--project", "myproj", "config", "key")
	assert.Equal(t, "value\n", result.Stdout)
}

func TestUnknownBackendFails(t *testing.T) {
	env := newBareEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.ConfigDir, "config.yaml"),
		[]byte("backend: bogus\n"), 0o644))

	result := env.Run("config", "--list")
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "unknown backend")
}
