package fileio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSinkStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mods")
	sink := NewDirSink(dir)

	n, err := sink.Store("sodium-0.5.0.jar", strings.NewReader("jar bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), n)

	data, err := os.ReadFile(filepath.Join(dir, "sodium-0.5.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, "jar bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirSinkRejectsPaths(t *testing.T) {
	sink := NewDirSink(t.TempDir())

	for _, name := range []string{"", "..", "../escape.jar", "nested/mod.jar", `nested\mod.jar`} {
		_, err := sink.Store(name, strings.NewReader("x"))
		assert.Error(t, err, name)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func TestDirSinkCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDirSink(dir).Store("broken.jar", failingReader{})
	require.ErrorIs(t, err, os.ErrClosed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
