package dto

import "time"

// IdentifierKind tags the outcome of parsing a user-supplied channel
// identifier or URL.
type IdentifierKind string

const (
	IdentifierChannelID IdentifierKind = "channel_id"
	IdentifierHandle    IdentifierKind = "handle"
)

// ResolvedIdentifier is the parsed form of a channel identifier.
type ResolvedIdentifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

// ChannelDescriptor is the upstream view of a channel, normalized from the
// YouTube API response.
type ChannelDescriptor struct {
	ExternalID        string `json:"external_id"`
	Name              string `json:"name"`
	Thumbnail         string `json:"thumbnail"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
	SubscriberCount   int64  `json:"subscriber_count"`
	ViewCount         int64  `json:"view_count"`
	VideoCount        int64  `json:"video_count"`
}

// VideoDescriptor is the upstream view of one uploaded item.
type VideoDescriptor struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// StatsDescriptor carries the provider counters for one video as reported
// (string values; parsing to integers happens at query time).
type StatsDescriptor struct {
	VideoID string            `json:"video_id"`
	Stats   map[string]string `json:"stats"`
}

// StatsBatchResult is the tagged outcome of one statistics batch call.
// A failed batch reports Err and an empty Stats slice; sibling batches are
// unaffected.
type StatsBatchResult struct {
	VideoIDs []string
	Stats    []StatsDescriptor
	Err      error
}

// IngestReport summarizes one channel ingestion: what landed, what failed
// and how much upstream quota the operation consumed.
type IngestReport struct {
	ChannelID        int64  `json:"channel_id"`
	ExternalID       string `json:"external_id"`
	ChannelName      string `json:"channel_name"`
	VideosSynced     int    `json:"videos_synced"`
	SnapshotsWritten int    `json:"snapshots_written"`
	FailedBatches    int    `json:"failed_batches"`
	QuotaUsed        int64  `json:"quota_used"`
}

// RefreshOutcome is the per-channel result of a fan-out refresh. Error is
// empty on success.
type RefreshOutcome struct {
	ChannelID        int64  `json:"channel_id"`
	ExternalID       string `json:"external_id"`
	VideosSynced     int    `json:"videos_synced"`
	SnapshotsWritten int    `json:"snapshots_written"`
	QuotaUsed        int64  `json:"quota_used"`
	Error            string `json:"error,omitempty"`
}

// RankedVideo is one row of a top-N ranking: a video joined with the value
// of the requested metric taken from its latest snapshot (zero when the
// video has no snapshot yet).
type RankedVideo struct {
	VideoID     string    `json:"video_id"`
	ChannelID   int64     `json:"channel_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Metric      string    `json:"metric"`
	Value       int64     `json:"value"`
	RecordedAt  time.Time `json:"recorded_at"`
	HasSnapshot bool      `json:"has_snapshot"`
}

// ChannelRollup sums the latest like and comment counts across all videos
// of one channel. Channels with no videos appear with zero sums.
type ChannelRollup struct {
	ChannelID     int64  `json:"channel_id"`
	ExternalID    string `json:"external_id"`
	ChannelName   string `json:"channel_name"`
	VideoCount    int    `json:"video_count"`
	TotalLikes    int64  `json:"total_likes"`
	TotalComments int64  `json:"total_comments"`
}

// ChannelRollupsPayload is the cached rollup document stored under a single
// well-known cache key.
type ChannelRollupsPayload struct {
	Rollups    []ChannelRollup `json:"rollups"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Rollup sources reported by the statistics endpoint.
const (
	RollupSourceCache    = "cache"
	RollupSourceComputed = "computed"
)

// ChannelListResponse is a paginated channel listing.
type ChannelListResponse struct {
	Items []interface{} `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// VideoListResponse is a paginated video listing.
type VideoListResponse struct {
	Items []interface{} `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
