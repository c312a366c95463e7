package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/charlesng35/filecache/internal/database/testutil"
)

type cliEnv struct {
	dir    string
	config string
	folder string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	dir := t.TempDir()
	folder := filepath.Join(dir, "files")
	config := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
cache:
  table: cli_cache
  folder: %s
maintenance:
  retention: 24h
`, filepath.Join(dir, "meta.sqlite"), folder)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filecache.yaml"), []byte(config), 0o644))

	return &cliEnv{dir: dir, config: dir, folder: folder}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) source(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	return path
}

func TestCLIAddGetList(t *testing.T) {
	env := newCLIEnv(t)
	src := env.source(t, "photo.jpg")

	out, _, err := env.run(t, "add", "k1", src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(env.folder, "photo.jpg"), strings.TrimSpace(out))
	require.FileExists(t, src)

	out, _, err = env.run(t, "add", "k2", src, "--name", "photo.jpg", "--move")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(env.folder, "photo (2).jpg"), strings.TrimSpace(out))
	require.NoFileExists(t, src)

	out, _, err = env.run(t, "get", "k2")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(env.folder, "photo (2).jpg"), strings.TrimSpace(out))

	out, _, err = env.run(t, "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "k1"))
	require.Contains(t, lines[2], "photo (2).jpg")
}

func TestCLIAddDuplicateKeyFails(t *testing.T) {
	env := newCLIEnv(t)
	src := env.source(t, "a.txt")

	_, _, err := env.run(t, "add", "dup", src)
	require.NoError(t, err)

	_, _, err = env.run(t, "add", "dup", src)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Key already exists")
}

func TestCLIGetUnknownKey(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run(t, "get", "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), `no entry for key "missing"`)
}

func TestCLIRemoveReportsFailures(t *testing.T) {
	env := newCLIEnv(t)
	src := env.source(t, "a.txt")

	stored, _, err := env.run(t, "add", "gone", src)
	require.NoError(t, err)
	_, _, err = env.run(t, "add", "kept", src, "--name", "b.txt")
	require.NoError(t, err)
	require.NoError(t, os.Remove(strings.TrimSpace(stored)))

	_, stderr, err := env.run(t, "rm", "gone", "kept")
	require.Error(t, err)
	require.Contains(t, err.Error(), "1 entries could not be evicted")
	require.Contains(t, stderr, "gone\ta.txt")
	require.NoFileExists(t, filepath.Join(env.folder, "b.txt"))

	_, _, err = env.run(t, "get", "gone")
	require.NoError(t, err)
}

func TestCLIRemoveReportsFailuresBeforeStoreError(t *testing.T) {
	env := newCLIEnv(t)
	src := env.source(t, "a.txt")

	stored, _, err := env.run(t, "add", "gone", src)
	require.NoError(t, err)
	_, _, err = env.run(t, "add", "stuck", src, "--name", "b.txt")
	require.NoError(t, err)
	require.NoError(t, os.Remove(strings.TrimSpace(stored)))

	db := testutil.MustOpenTestDB(t, testutil.WithPath(filepath.Join(env.dir, "meta.sqlite")))
	require.NoError(t, db.Exec(
		"CREATE TRIGGER reject_delete BEFORE DELETE ON cli_cache WHEN old.key = 'stuck' BEGIN SELECT RAISE(ABORT, 'deletes disabled'); END",
	).Error)

	_, stderr, err := env.run(t, "rm", "gone", "stuck")
	require.Error(t, err)
	require.Contains(t, err.Error(), "deletes disabled")
	require.Contains(t, err.Error(), "1 entries could not be evicted")
	require.Contains(t, stderr, "gone\ta.txt")
}

func TestCLIClearAndExpire(t *testing.T) {
	env := newCLIEnv(t)
	src := env.source(t, "a.txt")

	for _, key := range []string{"x", "y"} {
		_, _, err := env.run(t, "add", key, src)
		require.NoError(t, err)
	}

	_, _, err := env.run(t, "expire")
	require.NoError(t, err)
	out, _, err := env.run(t, "ls")
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	_, _, err = env.run(t, "expire", "--older-than=-1h")
	require.Error(t, err)

	_, _, err = env.run(t, "clear")
	require.NoError(t, err)
	out, _, err = env.run(t, "ls")
	require.NoError(t, err)
	require.Equal(t, "KEY  FILE  CREATED", strings.TrimSpace(out))

	entries, err := os.ReadDir(env.folder)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLoadApplicationConfigPaths(t *testing.T) {
	env := newCLIEnv(t)

	cfg, err := loadApplicationConfig(env.dir)
	require.NoError(t, err)
	require.Equal(t, "cli_cache", cfg.Cache.Table)

	cfg, err = loadApplicationConfig(filepath.Join(env.dir, "filecache.yaml"))
	require.NoError(t, err)
	require.Equal(t, env.folder, cfg.Cache.Folder)

	_, err = loadApplicationConfig(filepath.Join(env.dir, "missing"))
	require.Error(t, err)
}
