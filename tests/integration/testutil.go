// Package integration provides CLI integration tests for git-project.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var (
	// gitProjectBin is the path to the built git-project binary.
	gitProjectBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetGitProjectBin sets the path to the git-project binary (called from TestMain).
func SetGitProjectBin(path string) {
	gitProjectBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// cleanEnv returns os.Environ() with all GIT_PROJECT_* and XDG_* variables
// removed, providing a clean baseline for subprocess isolation.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "GIT_PROJECT_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// TestEnv provides an isolated test environment with its own config and
// data directory, configured for the sqlite backend so tests never touch a
// real repository.
type TestEnv struct {
	t         *testing.T
	TempDir   string
	ConfigDir string
	DataDir   string

	// WorkDir, when set, is the working directory for commands.
	WorkDir string
}

// NewTestEnv creates a new isolated test environment on the sqlite backend.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	env := newBareEnv(t)
	content := "backend: sqlite\ndata_dir: " + env.DataDir + "\n"
	if err := os.WriteFile(filepath.Join(env.ConfigDir, "config.yaml"),
		[]byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// NewGitConfigEnv creates an isolated environment on the gitconfig backend.
// Commands run with workDir as their working directory so backend
// discovery finds the repository there.
func NewGitConfigEnv(t *testing.T, workDir string) *TestEnv {
	t.Helper()

	env := newBareEnv(t)
	if err := os.WriteFile(filepath.Join(env.ConfigDir, "config.yaml"),
		[]byte("backend: gitconfig\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	env.WorkDir = workDir
	return env
}

func newBareEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build git-project: %v", buildErr)
	}
	if gitProjectBin == "" {
		t.Fatal("git-project binary not built (gitProjectBin is empty)")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	return &TestEnv{
		t:         t,
		TempDir:   tempDir,
		ConfigDir: configDir,
		DataDir:   dataDir,
	}
}

// CmdResult holds the result of a git-project command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the git-project CLI with the given arguments.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(gitProjectBin, allArgs...)
	cmd.Env = cleanEnv()
	if e.WorkDir != "" {
		cmd.Dir = e.WorkDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run git-project: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRun executes the git-project CLI and fails the test on non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	result := e.Run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("git-project %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}
