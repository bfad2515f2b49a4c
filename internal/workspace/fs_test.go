package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLocked = errors.New("file in use")

// crossDevice forces the copy path; remove refuses to delete locked.
func crossDevice(locked string) mover {
	return mover{
		rename: func(string, string) error { return errors.New("invalid cross-device link") },
		remove: func(name string) error {
			if name == locked {
				return errLocked
			}
			return os.Remove(name)
		},
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestMove_LockedSourceKeepsPreviousBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "relatorio.xlsx")
	dst := filepath.Join(dir, "backup", "relatorio.xlsx")
	writeFile(t, src, "new")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	writeFile(t, dst, "old")

	err := crossDevice(src).move(src, dst)
	require.ErrorIs(t, err, errLocked)

	assert.Equal(t, "old", readString(t, dst))
	assert.Equal(t, "new", readString(t, src))
	assert.NoFileExists(t, dst+".prev")
	assert.NoFileExists(t, dst+".tmp")
}

func TestMove_CopyFallbackReplacesBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "relatorio.xlsx")
	dst := filepath.Join(dir, "backup", "relatorio.xlsx")
	writeFile(t, src, "new")
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	writeFile(t, dst, "old")

	require.NoError(t, crossDevice("").move(src, dst))

	assert.Equal(t, "new", readString(t, dst))
	assert.NoFileExists(t, src)
	assert.NoFileExists(t, dst+".prev")
}

func TestMove_MissingSourceRestoresBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "relatorio.xlsx")
	writeFile(t, dst, "old")

	err := defaultMover.move(filepath.Join(dir, "absent.xlsx"), dst)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "old", readString(t, dst))
}
