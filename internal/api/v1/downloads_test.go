package v1

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadStore_SingleUse(t *testing.T) {
	t.Parallel()

	s := newDownloadStore()
	token := s.put(pendingDownload{filePath: "a.xlsx", fileName: "a.xlsx", runID: "r1"}, time.Minute)

	d, ok := s.take(token)
	require.True(t, ok)
	assert.Equal(t, "r1", d.runID)

	_, ok = s.take(token)
	assert.False(t, ok)
}

func TestDownloadStore_ExpiredRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	s := newDownloadStore()
	token := s.put(pendingDownload{filePath: path}, -time.Second)

	_, ok := s.take(token)
	assert.False(t, ok)
	assert.NoFileExists(t, path)
}
