package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu    sync.Mutex
	paths []string
}

func (c *collector) add(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, p)
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func isGLB(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".glb")
}

func TestReportsSettledFiles(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	w, err := NewWatcher(dir, c.add, WithSettle(20*time.Millisecond), WithFilter(isGLB))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial.glb"), []byte("x"), 0o644))
	target := filepath.Join(dir, "Ghost.GLB")
	require.NoError(t, os.WriteFile(target, []byte("glTF"), 0o644))

	require.Eventually(t, func() bool { return len(c.get()) == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{target}, c.get())
}

func TestCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drop", "here")
	w, err := NewWatcher(dir, nil)
	require.NoError(t, err)
	assert.DirExists(t, w.Dir())
}

func TestCloseStopsReports(t *testing.T) {
	dir := t.TempDir()
	c := &collector{}
	w, err := NewWatcher(dir, c.add, WithSettle(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.glb"), []byte("x"), 0o644))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, c.get())
	assert.ErrorIs(t, w.Start(), errWatcherClosed)
}
