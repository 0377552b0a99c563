package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherRebuildsOnNewModule(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "ping.py"), []byte("def main():\n    pass\n"), 0o644))

	w, err := NewWatcher([]string{root}, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond

	require.Equal(t, []string{"ping"}, w.Resolver().GetModulesList(""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "setup.py"), []byte("def main():\n    pass\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.Rebuilds() > 0
	}, 5*time.Second, 10*time.Millisecond, "watcher never rebuilt the registry")

	assert.Equal(t, []string{"ping", "setup"}, w.Resolver().GetModulesList(""))
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
}

func TestWatcherDoesNotRestartAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()

	assert.ErrorIs(t, w.Start(context.Background()), ErrWatcherStopped)
	w.Stop()
}

func TestWatcherStopBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher([]string{t.TempDir()}, nil)
	require.NoError(t, err)

	w.Stop()
	assert.ErrorIs(t, w.Start(context.Background()), ErrWatcherStopped)
}

func TestWatcherSnapshotIsImmutable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "ping.py"), []byte("def main():\n    pass\n"), 0o644))

	w, err := NewWatcher([]string{root}, nil)
	require.NoError(t, err)
	defer func() { _ = w.watcher.Close() }()

	before := w.Resolver()
	w.rebuild()

	// A rebuild swaps in a new snapshot; the old one is untouched.
	assert.NotSame(t, before, w.Resolver())
	assert.Equal(t, before.GetModulesList(""), w.Resolver().GetModulesList(""))
}
