package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
}

func TestListPDFs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "A.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	got, stats, err := ListPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "A.PDF"), filepath.Join(dir, "b.pdf")}, got)
	assert.EqualValues(t, 4, stats.Scanned)
	assert.EqualValues(t, 2, stats.Matched)
	assert.EqualValues(t, 1, stats.Hidden)

	_, _, err = ListPDFs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestStartWatcher_EmitsNewPDFs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Dir: dir, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(dir, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit")
	}

	touch(t, filepath.Join(dir, "ignored.txt"))
	touch(t, filepath.Join(dir, "new.pdf"))

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(dir, "new.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not emit new pdf")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_RejectsMissingDir(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{Dir: filepath.Join(t.TempDir(), "nope")}, nil)
	assert.Error(t, err)
}
