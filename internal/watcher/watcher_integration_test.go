package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchRealFilesystem(t *testing.T) {
	dir := t.TempDir()

	c, stop, err := Watch([]string{dir}, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer stop()

	// Registration is asynchronous on some platforms.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), []byte("hi"), 0o644))

	select {
	case evs := <-c:
		require.NotEmpty(t, evs)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event for file write")
	}
}
