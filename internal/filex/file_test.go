package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "data.db")
	require.NoError(t, EnsureParentDir(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureParentDir_ExistingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	assert.NoError(t, EnsureParentDir(path))
	assert.NoError(t, EnsureParentDir(path))
}

func TestEnsureParentDir_BarePath(t *testing.T) {
	assert.NoError(t, EnsureParentDir("data.db"))
}
