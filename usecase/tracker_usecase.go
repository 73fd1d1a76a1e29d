package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
	"tube-pulse/domain/repository"
	"tube-pulse/infrastructure/logger"
	"tube-pulse/infrastructure/quota"

	"golang.org/x/sync/errgroup"
)

// DefaultRefreshConcurrency caps how many channel refreshes run at once.
// The ceiling respects both the upstream rate limit and the database
// connection pool; extra channels queue behind it rather than being
// rejected.
const DefaultRefreshConcurrency = 5

// ErrChannelNotTracked is returned when a refresh targets a channel id that
// is not in the store.
var ErrChannelNotTracked = errors.New("channel is not tracked")

// ITrackerUseCase defines the ingestion-side operations: registering
// channels and pulling fresh metadata and statistics from upstream.
type ITrackerUseCase interface {
	// RegisterChannel resolves a user-supplied identifier, fetches the
	// channel and runs a full ingestion for it.
	RegisterChannel(ctx context.Context, identifier string) (*dto.IngestReport, error)
	// RefreshChannel re-ingests one already-tracked channel.
	RefreshChannel(ctx context.Context, channelID int64) (*dto.IngestReport, error)
	// RefreshAll refreshes every tracked channel with bounded parallelism
	// and returns one outcome per channel; a failed channel never blocks or
	// cancels its siblings.
	RefreshAll(ctx context.Context, concurrencyLimit int) ([]dto.RefreshOutcome, error)

	ListChannels(ctx context.Context, page, limit int) (*dto.ChannelListResponse, error)
	ListVideos(ctx context.Context, page, limit int, q string) (*dto.VideoListResponse, error)
	ListSnapshots(ctx context.Context, videoID string) ([]model.StatsSnapshot, error)
}

// TrackerUseCase implements the ingestion pipeline.
type TrackerUseCase struct {
	upstream     repository.IUpstream
	channelRepo  repository.IChannelRepository
	videoRepo    repository.IVideoRepository
	snapshotRepo repository.ISnapshotRepository
	rollupCache  repository.IRollupCache
}

// NewTrackerUseCase creates a new tracker use case instance.
func NewTrackerUseCase(
	upstream repository.IUpstream,
	channelRepo repository.IChannelRepository,
	videoRepo repository.IVideoRepository,
	snapshotRepo repository.ISnapshotRepository,
	rollupCache repository.IRollupCache,
) ITrackerUseCase {
	return &TrackerUseCase{
		upstream:     upstream,
		channelRepo:  channelRepo,
		videoRepo:    videoRepo,
		snapshotRepo: snapshotRepo,
		rollupCache:  rollupCache,
	}
}

// RegisterChannel resolves the identifier and runs a full ingestion.
func (u *TrackerUseCase) RegisterChannel(ctx context.Context, identifier string) (*dto.IngestReport, error) {
	ident, ok := u.upstream.ResolveIdentifier(identifier)
	if !ok {
		return nil, repository.ErrUnresolvableIdentifier
	}
	return u.ingestChannel(ctx, ident)
}

// RefreshChannel re-ingests one tracked channel by its internal id.
func (u *TrackerUseCase) RefreshChannel(ctx context.Context, channelID int64) (*dto.IngestReport, error) {
	ch, err := u.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel %d: %w", channelID, err)
	}
	if ch == nil {
		return nil, ErrChannelNotTracked
	}
	return u.ingestChannel(ctx, dto.ResolvedIdentifier{Kind: dto.IdentifierChannelID, Value: ch.ExternalID})
}

// RefreshAll fans out over every tracked channel under a fixed concurrency
// ceiling. Completion order is whatever arrives first; the result is simply
// one outcome per channel.
func (u *TrackerUseCase) RefreshAll(ctx context.Context, concurrencyLimit int) ([]dto.RefreshOutcome, error) {
	if concurrencyLimit <= 0 {
		concurrencyLimit = DefaultRefreshConcurrency
	}
	channels, err := u.channelRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for refresh: %w", err)
	}

	var (
		mu       sync.Mutex
		outcomes = make([]dto.RefreshOutcome, 0, len(channels))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit)
	for _, ch := range channels {
		ch := ch
		g.Go(func() error {
			outcome := dto.RefreshOutcome{ChannelID: ch.ID, ExternalID: ch.ExternalID}
			report, err := u.ingestChannel(gctx, dto.ResolvedIdentifier{Kind: dto.IdentifierChannelID, Value: ch.ExternalID})
			if err != nil {
				logger.GetLogger().WithFields(map[string]interface{}{
					"error":      err,
					"channelId":  ch.ID,
					"externalId": ch.ExternalID,
				}).Error("Channel refresh failed")
				outcome.Error = err.Error()
			} else {
				outcome.VideosSynced = report.VideosSynced
				outcome.SnapshotsWritten = report.SnapshotsWritten
				outcome.QuotaUsed = report.QuotaUsed
			}
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			// Per-channel failures are reported in the outcome, never
			// escalated, so one bad channel cannot cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

// ingestChannel runs one full ingestion: metadata, uploaded items and a
// fresh statistics snapshot per video. Each write is an independent
// transaction; a failure partway leaves earlier writes in place.
func (u *TrackerUseCase) ingestChannel(ctx context.Context, ident dto.ResolvedIdentifier) (*dto.IngestReport, error) {
	acct := quota.NewAccountant()

	desc, err := u.upstream.FetchChannelMetadata(ctx, ident, acct)
	if err != nil {
		return nil, err
	}
	ch, err := u.channelRepo.Upsert(ctx, desc)
	if err != nil {
		return nil, err
	}
	report := &dto.IngestReport{
		ChannelID:   ch.ID,
		ExternalID:  ch.ExternalID,
		ChannelName: ch.Name,
	}

	items, listErr := u.upstream.ListUploadedItems(ctx, desc.UploadsPlaylistID, acct)
	if listErr != nil {
		if len(items) == 0 {
			return nil, listErr
		}
		// A later page failed; ingest the pages that did arrive.
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":      listErr,
			"externalId": ch.ExternalID,
			"items":      len(items),
		}).Warn("Playlist listing ended early; ingesting partial item set")
	}
	if len(items) == 0 {
		report.QuotaUsed = acct.Total()
		return report, nil
	}
	if err := u.videoRepo.UpsertBulk(ctx, items, ch.ID); err != nil {
		return nil, err
	}
	report.VideosSynced = len(items)

	videoIDs := make([]string, 0, len(items))
	for _, item := range items {
		videoIDs = append(videoIDs, item.ID)
	}

	recordedAt := time.Now().UTC()
	var snapshots []model.StatsSnapshot
	for _, batch := range u.upstream.FetchStatisticsBatch(ctx, videoIDs, acct) {
		if batch.Err != nil {
			report.FailedBatches++
			continue
		}
		for _, s := range batch.Stats {
			snapshots = append(snapshots, model.StatsSnapshot{
				VideoID:    s.VideoID,
				Stats:      s.Stats,
				RecordedAt: recordedAt,
			})
		}
	}

	written, err := u.snapshotRepo.AppendBulk(ctx, snapshots)
	if err != nil {
		return nil, err
	}
	report.SnapshotsWritten = written

	// New snapshots make any cached rollup stale; drop it before this
	// ingestion returns so a subsequent read recomputes.
	if written > 0 {
		if err := u.rollupCache.Invalidate(ctx); err != nil {
			return nil, fmt.Errorf("failed to invalidate rollup cache after ingest: %w", err)
		}
	}

	report.QuotaUsed = acct.Total()
	logger.GetLogger().WithFields(map[string]interface{}{
		"externalId":    ch.ExternalID,
		"videos":        report.VideosSynced,
		"snapshots":     report.SnapshotsWritten,
		"failedBatches": report.FailedBatches,
		"quotaUsed":     report.QuotaUsed,
	}).Info("Channel ingestion completed")
	return report, nil
}

// ListChannels returns a page of tracked channels.
func (u *TrackerUseCase) ListChannels(ctx context.Context, page, limit int) (*dto.ChannelListResponse, error) {
	page, limit = normalizePage(page, limit)
	channels, total, err := u.channelRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	items := make([]interface{}, len(channels))
	for i := range channels {
		items[i] = channels[i]
	}
	return &dto.ChannelListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ListVideos returns a page of stored videos, optionally filtered by a
// case-insensitive title substring.
func (u *TrackerUseCase) ListVideos(ctx context.Context, page, limit int, q string) (*dto.VideoListResponse, error) {
	page, limit = normalizePage(page, limit)
	videos, total, err := u.videoRepo.List(ctx, limit, (page-1)*limit, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	items := make([]interface{}, len(videos))
	for i := range videos {
		items[i] = videos[i]
	}
	return &dto.VideoListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ListSnapshots returns the snapshot history of one video, newest first.
func (u *TrackerUseCase) ListSnapshots(ctx context.Context, videoID string) ([]model.StatsSnapshot, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	snapshots, err := u.snapshotRepo.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for %s: %w", videoID, err)
	}
	return snapshots, nil
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 25
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
