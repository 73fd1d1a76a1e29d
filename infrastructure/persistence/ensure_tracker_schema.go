package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tube-pulse/infrastructure/logger"
)

// EnsureTrackerSchema creates the tracker tables if they do not exist.
// Channels cascade to videos, videos cascade to snapshots; snapshots are
// append-only and never updated.
func EnsureTrackerSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ddls := []string{
		`CREATE TABLE IF NOT EXISTS channels (
            id BIGSERIAL PRIMARY KEY,
            external_id TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL UNIQUE,
            thumbnail TEXT UNIQUE,
            uploads_playlist_id TEXT UNIQUE,
            subscriber_count BIGINT NOT NULL DEFAULT 0,
            view_count BIGINT NOT NULL DEFAULT 0,
            video_count BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS videos (
            id TEXT PRIMARY KEY,
            channel_id BIGINT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
            title TEXT NOT NULL,
            url TEXT NOT NULL,
            thumbnail TEXT,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS stats_snapshots (
            id BIGSERIAL PRIMARY KEY,
            video_id TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
            stats JSONB NOT NULL,
            recorded_at TIMESTAMPTZ NOT NULL
        )`,
	}
	for _, ddl := range ddls {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating tracker schema failed: %w", err)
		}
	}

	// Index backing the latest-per-video query.
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_stats_snapshots_video_recorded
        ON stats_snapshots (video_id, recorded_at DESC, id DESC)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_stats_snapshots_video_recorded")
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_videos_channel_id ON videos (channel_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_videos_channel_id")
	}
	return nil
}
