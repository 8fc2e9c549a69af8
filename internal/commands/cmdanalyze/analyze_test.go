package cmdanalyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leocov-dev/mrbulk/fileio"
)

func TestCollectArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"sodium.jar", "sodium-sources.jar", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	single := filepath.Join(t.TempDir(), "custom.zip")
	require.NoError(t, os.WriteFile(single, []byte("zip"), 0o644))

	found, err := CollectArchives([]string{dir, single}, fileio.DefaultArchivePattern)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "sodium.jar"), single}, found)

	_, err = CollectArchives([]string{filepath.Join(dir, "missing")}, "")
	assert.Error(t, err)
}
