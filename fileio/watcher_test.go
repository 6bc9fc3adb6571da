package fileio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		event    EventType
		expected string
	}{
		{EventCreate, "CREATE"},
		{EventModify, "MODIFY"},
		{EventDelete, "DELETE"},
		{EventType(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.String())
		})
	}
}

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	users := filepath.Join(dir, "users.csv")

	w, err := NewWatcher([]string{orders, users})
	require.NoError(t, err)
	defer w.Close()

	assert.ElementsMatch(t, []string{orders, users}, w.Files())
	assert.Len(t, w.dirs, 1)
	assert.False(t, w.IsRunning())

	_, err = NewWatcher(nil)
	assert.Error(t, err)
}

func TestWatcher_StartStop(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{filepath.Join(dir, "orders.csv")})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	require.NoError(t, w.Stop())
}

func TestWatcher_InvalidPath(t *testing.T) {
	w, err := NewWatcher([]string{"/nonexistent/path/that/does/not/exist/orders.csv"})
	require.NoError(t, err)
	defer w.Close()

	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch path")
	assert.False(t, w.IsRunning())
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (FileEvent, bool) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		return ev, ok
	case <-time.After(timeout):
		return FileEvent{}, false
	}
}

func TestWatcher_ReportsOnlyWatchedFiles(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte("v1"), 0644))

	w, err := NewWatcherWithConfig([]string{orders}, WatcherConfig{DebounceTime: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(orders, []byte("v2"), 0644))

	ev, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok, "expected an event for the orders file")
	assert.Equal(t, orders, ev.Path)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte("v0"), 0644))

	w, err := NewWatcherWithConfig([]string{orders}, WatcherConfig{DebounceTime: 100 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(orders, []byte{byte('a' + i)}, 0644))
	}

	_, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok)

	_, ok = waitEvent(t, w, 300*time.Millisecond)
	assert.False(t, ok, "a burst of writes should be reported once")
}

func TestWatcher_BurstKeepsWriteBeforeChmod(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte("v0"), 0644))

	w, err := NewWatcherWithConfig([]string{orders}, WatcherConfig{DebounceTime: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	// cp -p writes the content, then restores the mode
	w.handleEvent(fsnotify.Event{Name: orders, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: orders, Op: fsnotify.Chmod})

	ev, ok := waitEvent(t, w, 2*time.Second)
	require.True(t, ok, "a write followed by a chmod should be reported")
	assert.Equal(t, orders, ev.Path)
	assert.Equal(t, EventModify, ev.Type)
}

func TestWatcher_ChmodOnlyBurstIsIgnored(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(orders, []byte("v0"), 0644))

	w, err := NewWatcherWithConfig([]string{orders}, WatcherConfig{DebounceTime: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Start())

	w.handleEvent(fsnotify.Event{Name: orders, Op: fsnotify.Chmod})
	w.handleEvent(fsnotify.Event{Name: orders, Op: fsnotify.Chmod})

	_, ok := waitEvent(t, w, 200*time.Millisecond)
	assert.False(t, ok)
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.csv")

	w, err := NewWatcherWithConfig([]string{orders}, WatcherConfig{DebounceTime: 10 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan FileEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ev FileEvent) {
			select {
			case got <- ev:
			default:
			}
			cancel()
		})
	}()

	require.Eventually(t, w.IsRunning, time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(orders, []byte("new"), 0644))

	select {
	case ev := <-got:
		assert.Equal(t, orders, ev.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
	require.NoError(t, <-done)
	assert.False(t, w.IsRunning())
}

func TestWatcher_Close(t *testing.T) {
	w, err := NewWatcher([]string{filepath.Join(t.TempDir(), "orders.csv")})
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Close())
	assert.False(t, w.IsRunning())

	_, ok := <-w.Events()
	assert.False(t, ok, "Events channel should be closed")
	_, ok = <-w.Errors()
	assert.False(t, ok, "Errors channel should be closed")

	assert.NoError(t, w.Close())
	assert.Error(t, w.Start())
}
