package browser

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const OrphanProfileTTL = 90 * time.Minute

// RunSweeper removes orphaned profiles once immediately and then on every interval until ctx is done.
func RunSweeper(ctx context.Context, baseDir string, interval, ttl time.Duration, logger *slog.Logger) {
	SweepOrphanProfiles(baseDir, ttl, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepOrphanProfiles(baseDir, ttl, logger)
		}
	}
}

// SweepOrphanProfiles deletes profile directories older than ttl, left behind
// by a crashed process. It returns how many were removed.
func SweepOrphanProfiles(baseDir string, ttl time.Duration, logger *slog.Logger) int {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		logger.Warn("read profile dir", "dir", baseDir, "error", err)
		return 0
	}

	removed := 0
	now := time.Now()

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ProfilePrefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}

		fullPath := filepath.Join(baseDir, entry.Name())
		if err := os.RemoveAll(fullPath); err != nil {
			logger.Warn("remove orphan profile", "path", fullPath, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("removed orphan browser profiles", "count", removed)
	}
	return removed
}
