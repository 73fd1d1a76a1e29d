package model

import "time"

// Channel represents a tracked YouTube channel. ExternalID is the stable
// identity; the denormalized counters are overwritten wholesale on every
// refresh cycle.
type Channel struct {
	ID                int64     `json:"id"`
	ExternalID        string    `json:"external_id"`
	Name              string    `json:"name"`
	Thumbnail         string    `json:"thumbnail"`
	UploadsPlaylistID string    `json:"uploads_playlist_id"`
	SubscriberCount   int64     `json:"subscriber_count"`
	ViewCount         int64     `json:"view_count"`
	VideoCount        int64     `json:"video_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Video represents a single uploaded video belonging to one channel.
// The ID is the YouTube video id and never changes across refreshes.
type Video struct {
	ID        string    `json:"id"`
	ChannelID int64     `json:"channel_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatsSnapshot is one timestamped observation of a video's statistics.
// Snapshots are append-only; the same video accumulates many over time.
// Stats holds the provider counters as reported (string values), e.g.
// {"views": "1234", "likes": "56", "comments": "7"}.
type StatsSnapshot struct {
	ID         int64             `json:"id"`
	VideoID    string            `json:"video_id"`
	Stats      map[string]string `json:"stats"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Metric keys recognized by ranking and rollup queries.
const (
	MetricViews    = "views"
	MetricLikes    = "likes"
	MetricComments = "comments"
)
