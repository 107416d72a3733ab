package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosa-dev/rosa/internal/schema"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "rosa-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "rosa")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/rosa")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runRosa(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "ROSA_LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Secours Test")
	require.NoError(t, err)

	expectedDirs := []string{
		"beneficiaries",
		"ledgers",
		"schema",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Mon Association")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "rosa.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Mon Association")
	assert.Contains(t, contents, "backend: csv")
	assert.Contains(t, contents, "locale: fr-FR")
}

func TestInit_SQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Secours Test", "--backend", "sqlite")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "rosa.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "path: data/rosa.db")
}

func TestInit_UnknownBackend(t *testing.T) {
	_, err := runRosa(t, "init", t.TempDir(), "--name", "X", "--backend", "postgres")
	assert.Error(t, err)
}

func TestInit_Schema(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Secours Test")
	require.NoError(t, err)

	s, err := schema.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, schema.Default(), s)
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Secours Test")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: Initialize Secours Test")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "Rosa <rosa@localhost>")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runRosa(t, "init", dir, "--name", "Secours Test")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{".env", "*.db-journal"} {
		assert.Contains(t, string(data), pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runRosa(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}
