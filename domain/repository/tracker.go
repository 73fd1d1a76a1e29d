package repository

import (
	"context"
	"errors"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
)

// ErrChannelNotFound is returned when the upstream API reports no channel
// for a resolved identifier. Callers treat it as "nothing to do".
var ErrChannelNotFound = errors.New("channel not found upstream")

// ErrUnresolvableIdentifier is returned when a user-supplied identifier
// matches no recognized handle or URL form.
var ErrUnresolvableIdentifier = errors.New("identifier matches no known channel or URL form")

// IQuotaAccountant records the upstream cost of API calls within one logical
// operation. Charging never fails; the running total is read by the caller
// once the operation has completed.
type IQuotaAccountant interface {
	Charge(cost int64, operation string)
	Total() int64
}

// IUpstream defines the read-only client against the rate-limited YouTube
// API. Every call charges its fixed cost against the supplied accountant.
type IUpstream interface {
	// ResolveIdentifier parses a raw handle token or recognized URL form.
	// No network call; ok is false when nothing matches.
	ResolveIdentifier(raw string) (dto.ResolvedIdentifier, bool)
	// FetchChannelMetadata performs a single channel lookup by resolved
	// identifier. Returns ErrChannelNotFound when upstream has no match.
	FetchChannelMetadata(ctx context.Context, ident dto.ResolvedIdentifier, acct IQuotaAccountant) (*dto.ChannelDescriptor, error)
	// ListUploadedItems walks the uploads playlist page by page until no
	// continuation token remains. On a page failure it returns the items
	// collected so far together with the error; retrying is the caller's
	// decision.
	ListUploadedItems(ctx context.Context, playlistID string, acct IQuotaAccountant) ([]dto.VideoDescriptor, error)
	// FetchStatisticsBatch partitions ids into provider-sized batches,
	// issues them concurrently and returns one tagged result per batch.
	FetchStatisticsBatch(ctx context.Context, videoIDs []string, acct IQuotaAccountant) []dto.StatsBatchResult
}

// IChannelRepository owns persisted channel rows.
type IChannelRepository interface {
	// Upsert inserts or updates a channel keyed by external id. On conflict
	// the display metadata and counters are overwritten and updated_at is
	// touched; created_at is preserved. Returns the stored row.
	Upsert(ctx context.Context, desc *dto.ChannelDescriptor) (*model.Channel, error)
	GetByID(ctx context.Context, id int64) (*model.Channel, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Channel, error)
	List(ctx context.Context, limit, offset int) ([]model.Channel, int64, error)
	ListAll(ctx context.Context) ([]model.Channel, error)
}

// IVideoRepository owns persisted video rows.
type IVideoRepository interface {
	// UpsertBulk inserts or updates videos keyed by video id. On conflict
	// only title and thumbnail are overwritten and updated_at is touched;
	// the url is derived from the id at insert time.
	UpsertBulk(ctx context.Context, videos []dto.VideoDescriptor, channelID int64) error
	List(ctx context.Context, limit, offset int, q string) ([]model.Video, int64, error)
	ListAll(ctx context.Context) ([]model.Video, error)
	ListByChannel(ctx context.Context, channelID int64) ([]model.Video, error)
}

// ISnapshotRepository owns the append-only statistics history.
type ISnapshotRepository interface {
	// AppendBulk appends snapshots and returns the count the caller intended
	// to append. The count is best-effort, not a verified row count.
	AppendBulk(ctx context.Context, snapshots []model.StatsSnapshot) (int, error)
	ListByVideo(ctx context.Context, videoID string) ([]model.StatsSnapshot, error)
	// LatestPerVideo returns, for each requested video that has at least one
	// snapshot, the snapshot with the maximum recorded_at. Ties on
	// recorded_at resolve to the highest snapshot id. A nil or empty id set
	// means all videos.
	LatestPerVideo(ctx context.Context, videoIDs []string) ([]model.StatsSnapshot, error)
}

// IRollupCache is the TTL cache over the channel rollup aggregate.
type IRollupCache interface {
	// Get returns the cached payload, or nil on a miss (expired or absent).
	Get(ctx context.Context) (*dto.ChannelRollupsPayload, error)
	Set(ctx context.Context, payload *dto.ChannelRollupsPayload) error
	// Invalidate deletes the cached payload. Called on every ingestion that
	// appends new snapshots, before the ingestion returns.
	Invalidate(ctx context.Context) error
}
