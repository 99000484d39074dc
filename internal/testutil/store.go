package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/denizcargo/opswatch/internal/store"
)

// OpenStore opens a fresh SQLite store in a per-test temp directory and
// closes it when the test finishes.
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "opswatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})
	return st
}

// Str returns a pointer to s. Fixture shorthand.
func Str(s string) *string {
	return &s
}

// Time returns a pointer to t. Fixture shorthand.
func Time(t time.Time) *time.Time {
	return &t
}
