package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreLifecycle(t *testing.T) {
	s, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	require.NoError(t, s.Save("a.png", []byte("data")))
	assert.True(t, s.Exists("a.png"))

	got, err := os.ReadFile(filepath.Join(s.Dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, names)

	require.NoError(t, s.Remove("a.png"))
	assert.False(t, s.Exists("a.png"))
	assert.NoError(t, s.Remove("a.png"))
}

func TestDiskStoreRejectsPaths(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x.png", "sub/x.png", ".hidden"} {
		assert.Error(t, s.Save(name, []byte("x")), name)
		assert.Error(t, s.Remove(name), name)
		assert.False(t, s.Exists(name), name)
	}
}
