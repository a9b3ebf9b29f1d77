package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]*Store {
	t.Helper()

	disk, err := Open(filepath.Join(t.TempDir(), "nested", "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := Open("")
	require.NoError(t, err)

	return map[string]*Store{"bolt": disk, "memory": mem}
}

func TestCookies(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, s.LoadCookies())

			require.NoError(t, s.SaveCookies("localhost", []byte(`[{"name":"token"}]`)))
			require.NoError(t, s.SaveCookies("campus.example.edu", []byte("old")))
			require.NoError(t, s.SaveCookies("campus.example.edu", []byte("new")))

			got := s.LoadCookies()
			assert.Len(t, got, 2)
			assert.Equal(t, []byte("new"), got["campus.example.edu"])

			require.NoError(t, s.ClearCookies())
			assert.Empty(t, s.LoadCookies())

			require.NoError(t, s.SaveCookies("localhost", []byte("again")))
			assert.Len(t, s.LoadCookies(), 1)
		})
	}
}

func TestReopenKeepsCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveCookies("campus.example.edu", []byte("raw")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []byte("raw"), s.LoadCookies()["campus.example.edu"])
}
