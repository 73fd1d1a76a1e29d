package persistence

import (
	"context"
	"database/sql"
	"time"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
)

// videoURLPrefix derives the canonical watch URL from the video id at write
// time; the url column is never conflict-updated.
const videoURLPrefix = "https://www.youtube.com/watch?v="

const videoColumns = `id, channel_id, title, url, thumbnail, created_at, updated_at`

// VideoRepository implements video persistence on PostgreSQL.
type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository { return &VideoRepository{db: db} }

// UpsertBulk inserts or updates videos keyed by video id inside one
// transaction. On conflict only title and thumbnail are overwritten and
// updated_at is touched; identity and created_at never change.
func (r *VideoRepository) UpsertBulk(ctx context.Context, videos []dto.VideoDescriptor, channelID int64) error {
	if len(videos) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := `INSERT INTO videos (id, channel_id, title, url, thumbnail, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$6)
          ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            thumbnail = EXCLUDED.thumbnail,
            updated_at = EXCLUDED.updated_at`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, v := range videos {
		if _, err = stmt.ExecContext(ctx, v.ID, channelID, v.Title, videoURLPrefix+v.ID, v.Thumbnail, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns a page of videos ordered by most recently updated, optionally
// filtered by a case-insensitive substring match on the title.
func (r *VideoRepository) List(ctx context.Context, limit, offset int, q string) ([]model.Video, int64, error) {
	pattern := "%" + q + "%"
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM videos WHERE title ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE title ILIKE $1 ORDER BY updated_at DESC, id ASC LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	videos, err := collectVideos(rows)
	return videos, total, err
}

// ListAll returns every stored video.
func (r *VideoRepository) ListAll(ctx context.Context) ([]model.Video, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

// ListByChannel returns every video belonging to one channel.
func (r *VideoRepository) ListByChannel(ctx context.Context, channelID int64) ([]model.Video, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE channel_id = $1 ORDER BY id ASC`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

func collectVideos(rows *sql.Rows) ([]model.Video, error) {
	var out []model.Video
	for rows.Next() {
		v := model.Video{}
		var thumbnail sql.NullString
		if err := rows.Scan(&v.ID, &v.ChannelID, &v.Title, &v.URL, &thumbnail, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.Thumbnail = thumbnail.String
		out = append(out, v)
	}
	return out, rows.Err()
}
