package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
)

const channelColumns = `id, external_id, name, thumbnail, uploads_playlist_id, subscriber_count, view_count, video_count, created_at, updated_at`

// ChannelRepository implements channel persistence on PostgreSQL.
type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository(db *sql.DB) *ChannelRepository { return &ChannelRepository{db: db} }

// Upsert inserts or updates a channel keyed by external id. Display metadata
// and counters are overwritten wholesale on conflict; created_at is kept.
func (r *ChannelRepository) Upsert(ctx context.Context, desc *dto.ChannelDescriptor) (*model.Channel, error) {
	now := time.Now().UTC()
	q := `INSERT INTO channels (external_id, name, thumbnail, uploads_playlist_id, subscriber_count, view_count, video_count, created_at, updated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
          ON CONFLICT (external_id) DO UPDATE SET
            name = EXCLUDED.name,
            thumbnail = EXCLUDED.thumbnail,
            uploads_playlist_id = EXCLUDED.uploads_playlist_id,
            subscriber_count = EXCLUDED.subscriber_count,
            view_count = EXCLUDED.view_count,
            video_count = EXCLUDED.video_count,
            updated_at = EXCLUDED.updated_at
          RETURNING ` + channelColumns
	row := r.db.QueryRowContext(ctx, q,
		desc.ExternalID, desc.Name, desc.Thumbnail, desc.UploadsPlaylistID,
		desc.SubscriberCount, desc.ViewCount, desc.VideoCount, now,
	)
	ch, err := scanChannel(row)
	if err != nil {
		return nil, fmt.Errorf("upsert channel %s: %w", desc.ExternalID, err)
	}
	return ch, nil
}

// GetByID returns a channel by its internal id, or nil when absent.
func (r *ChannelRepository) GetByID(ctx context.Context, id int64) (*model.Channel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	ch, err := scanChannel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ch, err
}

// GetByExternalID returns a channel by external id, or nil when absent.
func (r *ChannelRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Channel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels WHERE external_id = $1`, externalID)
	ch, err := scanChannel(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ch, err
}

// List returns a page of channels ordered by name, plus the total count.
func (r *ChannelRepository) List(ctx context.Context, limit, offset int) ([]model.Channel, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM channels`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	channels, err := collectChannels(rows)
	return channels, total, err
}

// ListAll returns every tracked channel, ordered by internal id.
func (r *ChannelRepository) ListAll(ctx context.Context) ([]model.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+channelColumns+` FROM channels ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectChannels(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChannel(row rowScanner) (*model.Channel, error) {
	ch := &model.Channel{}
	var thumbnail, uploads sql.NullString
	err := row.Scan(&ch.ID, &ch.ExternalID, &ch.Name, &thumbnail, &uploads,
		&ch.SubscriberCount, &ch.ViewCount, &ch.VideoCount, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ch.Thumbnail = thumbnail.String
	ch.UploadsPlaylistID = uploads.String
	return ch, nil
}

func collectChannels(rows *sql.Rows) ([]model.Channel, error) {
	var out []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ch)
	}
	return out, rows.Err()
}
