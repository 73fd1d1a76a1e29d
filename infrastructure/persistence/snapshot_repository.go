package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"tube-pulse/domain/model"

	"github.com/lib/pq"
)

const snapshotColumns = `id, video_id, stats, recorded_at`

// SnapshotRepository implements the append-only statistics history on
// PostgreSQL. Snapshot rows are never updated or deleted by this service;
// deletion happens only through the cascading FK when a video goes away.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository { return &SnapshotRepository{db: db} }

// AppendBulk appends snapshots inside one transaction and returns the count
// the caller intended to append. The count is best-effort; it is not
// re-read from the store.
func (r *SnapshotRepository) AppendBulk(ctx context.Context, snapshots []model.StatsSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stats_snapshots (video_id, stats, recorded_at) VALUES ($1,$2,$3)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := range snapshots {
		s := &snapshots[i]
		recordedAt := s.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		raw, mErr := json.Marshal(s.Stats)
		if mErr != nil {
			err = mErr
			return 0, err
		}
		if _, err = stmt.ExecContext(ctx, s.VideoID, raw, recordedAt); err != nil {
			return 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(snapshots), nil
}

// ListByVideo returns the full snapshot history of one video, newest first.
func (r *SnapshotRepository) ListByVideo(ctx context.Context, videoID string) ([]model.StatsSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM stats_snapshots WHERE video_id = $1 ORDER BY recorded_at DESC, id DESC`,
		videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

// LatestPerVideo returns, per video with at least one snapshot, the snapshot
// with the maximum recorded_at. Equal recorded_at values resolve to the
// highest snapshot id. A nil or empty id set means all videos.
func (r *SnapshotRepository) LatestPerVideo(ctx context.Context, videoIDs []string) ([]model.StatsSnapshot, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if len(videoIDs) == 0 {
		rows, err = r.db.QueryContext(ctx,
			`SELECT DISTINCT ON (video_id) `+snapshotColumns+` FROM stats_snapshots ORDER BY video_id, recorded_at DESC, id DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT DISTINCT ON (video_id) `+snapshotColumns+` FROM stats_snapshots WHERE video_id = ANY($1) ORDER BY video_id, recorded_at DESC, id DESC`,
			pq.Array(videoIDs))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

func collectSnapshots(rows *sql.Rows) ([]model.StatsSnapshot, error) {
	var out []model.StatsSnapshot
	for rows.Next() {
		s := model.StatsSnapshot{}
		var raw []byte
		if err := rows.Scan(&s.ID, &s.VideoID, &raw, &s.RecordedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &s.Stats); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
