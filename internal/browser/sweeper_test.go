package browser

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOrphanProfiles(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	active := filepath.Join(dir, ProfilePrefix+"active")
	orphan := filepath.Join(dir, ProfilePrefix+"orphan")
	unrelated := filepath.Join(dir, "some_other_folder")
	for _, d := range []string{active, orphan, unrelated} {
		require.NoError(t, os.Mkdir(d, 0o755))
	}

	now := time.Now()
	require.NoError(t, os.Chtimes(active, now.Add(-10*time.Minute), now.Add(-10*time.Minute)))
	require.NoError(t, os.Chtimes(orphan, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, os.Chtimes(unrelated, now.Add(-2*time.Hour), now.Add(-2*time.Hour)))

	removed := SweepOrphanProfiles(dir, OrphanProfileTTL, logger)

	assert.Equal(t, 1, removed)
	assert.DirExists(t, active)
	assert.DirExists(t, unrelated)
	assert.NoDirExists(t, orphan)
}

func TestSweepOrphanProfiles_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	assert.Equal(t, 0, SweepOrphanProfiles(filepath.Join(t.TempDir(), "nope"), time.Hour, logger))
}

func TestRunSweeper_SweepsOnStart(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	orphan := filepath.Join(dir, ProfilePrefix+"orphan")
	require.NoError(t, os.Mkdir(orphan, 0o755))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(orphan, old, old))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, dir, time.Hour, OrphanProfileTTL, logger)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(orphan)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
