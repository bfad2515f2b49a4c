package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "C:\\out.xlsx"}},
		{"darwin", "open", []string{"C:\\out.xlsx"}},
		{"linux", "xdg-open", []string{"C:\\out.xlsx"}},
		{"freebsd", "xdg-open", []string{"C:\\out.xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, "C:\\out.xlsx")
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFallbackCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"explorer"}, fallbackCommands("windows"))
	assert.Nil(t, fallbackCommands("darwin"))
}

func TestOpenFile_Missing(t *testing.T) {
	t.Parallel()

	err := OpenFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
