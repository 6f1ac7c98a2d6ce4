package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	args := filepath.Join(dir, "args.yaml")
	targets, dirs, err := resolve([]string{args, filepath.Join(dir, "model.yaml")})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, dirs)

	assert.True(t, relevant(fsnotify.Event{Name: args, Op: fsnotify.Write}, targets))
	assert.True(t, relevant(fsnotify.Event{Name: args, Op: fsnotify.Rename}, targets))
	assert.False(t, relevant(fsnotify.Event{Name: args, Op: fsnotify.Chmod}, targets))
	assert.False(t, relevant(fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, targets))
}

func TestWatch_NoPaths(t *testing.T) {
	err := Watch(context.Background(), Config{}, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestWatch_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	args := filepath.Join(dir, "args.yaml")
	require.NoError(t, os.WriteFile(args, []byte("a: 1\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{Paths: []string{args}, Debounce: 20 * time.Millisecond}, func(context.Context) error {
			ran <- struct{}{}
			return errors.New("logged, not fatal")
		})
	}()

	// Keep writing until the watcher has registered and reacted.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-ran:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(args, []byte("a: 2\n"), 0o644))
		case <-deadline:
			t.Fatal("onChange was not called")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
