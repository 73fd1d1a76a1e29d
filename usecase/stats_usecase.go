package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
	"tube-pulse/domain/repository"
	"tube-pulse/infrastructure/logger"
)

// DefaultTopN is the ranking size when the caller does not supply one.
const DefaultTopN = 5

// ErrUnknownMetric signals a ranking request for a metric the tracker does
// not record.
var ErrUnknownMetric = errors.New("unknown metric")

// IStatsUseCase defines the query-side operations built on latest-snapshot
// resolution.
type IStatsUseCase interface {
	// TopVideos ranks all videos descending by the named metric taken from
	// each video's latest snapshot and truncates to n.
	TopVideos(ctx context.Context, metric string, n int) ([]dto.RankedVideo, error)
	// TopVideoPerChannel keeps only the highest-ranked video per channel.
	// Channels with no videos are absent from the result.
	TopVideoPerChannel(ctx context.Context, metric string) ([]dto.RankedVideo, error)
	// GetChannelRollups returns per-channel like/comment sums and whether
	// they came from the cache or were computed.
	GetChannelRollups(ctx context.Context) (*dto.ChannelRollupsPayload, string, error)
}

// StatsUseCase implements ranking and rollup queries.
type StatsUseCase struct {
	channelRepo  repository.IChannelRepository
	videoRepo    repository.IVideoRepository
	snapshotRepo repository.ISnapshotRepository
	rollupCache  repository.IRollupCache
}

// NewStatsUseCase creates a new stats use case instance.
func NewStatsUseCase(
	channelRepo repository.IChannelRepository,
	videoRepo repository.IVideoRepository,
	snapshotRepo repository.ISnapshotRepository,
	rollupCache repository.IRollupCache,
) IStatsUseCase {
	return &StatsUseCase{
		channelRepo:  channelRepo,
		videoRepo:    videoRepo,
		snapshotRepo: snapshotRepo,
		rollupCache:  rollupCache,
	}
}

// ParseCount converts a provider-reported counter string to an integer.
// Missing or non-numeric values resolve to zero, never to an error; ranking
// queries must tolerate sparse statistics.
func ParseCount(raw string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// resolveLatest folds the latest-per-video rows into a map. Every video in
// the store gets exactly one entry in the rankings built on top of this,
// whether or not it appears here.
func (u *StatsUseCase) resolveLatest(ctx context.Context) (map[string]model.StatsSnapshot, error) {
	latest, err := u.snapshotRepo.LatestPerVideo(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve latest snapshots: %w", err)
	}
	byVideo := make(map[string]model.StatsSnapshot, len(latest))
	for _, s := range latest {
		byVideo[s.VideoID] = s
	}
	return byVideo, nil
}

// rankAll joins every stored video with the value of metric from its latest
// snapshot. Videos with no snapshot participate with value zero. The result
// is sorted descending by value; equal values order by video id ascending
// so rankings are deterministic.
func (u *StatsUseCase) rankAll(ctx context.Context, metric string) ([]dto.RankedVideo, error) {
	metric, err := normalizeMetric(metric)
	if err != nil {
		return nil, err
	}
	videos, err := u.videoRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for ranking: %w", err)
	}
	byVideo, err := u.resolveLatest(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]dto.RankedVideo, 0, len(videos))
	for _, v := range videos {
		row := dto.RankedVideo{
			VideoID:   v.ID,
			ChannelID: v.ChannelID,
			Title:     v.Title,
			URL:       v.URL,
			Metric:    metric,
		}
		if s, ok := byVideo[v.ID]; ok {
			row.Value = ParseCount(s.Stats[metric])
			row.RecordedAt = s.RecordedAt
			row.HasSnapshot = true
		}
		ranked = append(ranked, row)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})
	return ranked, nil
}

// TopVideos returns the n highest-ranked videos by metric.
func (u *StatsUseCase) TopVideos(ctx context.Context, metric string, n int) ([]dto.RankedVideo, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	ranked, err := u.rankAll(ctx, metric)
	if err != nil {
		return nil, err
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// TopVideoPerChannel keeps the first-ranked video of each channel.
func (u *StatsUseCase) TopVideoPerChannel(ctx context.Context, metric string) ([]dto.RankedVideo, error) {
	ranked, err := u.rankAll(ctx, metric)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	out := make([]dto.RankedVideo, 0)
	for _, row := range ranked {
		if seen[row.ChannelID] {
			continue
		}
		seen[row.ChannelID] = true
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

// GetChannelRollups serves per-channel like/comment sums, cache-aside. On a
// hit the cached payload is returned verbatim without touching the store.
func (u *StatsUseCase) GetChannelRollups(ctx context.Context) (*dto.ChannelRollupsPayload, string, error) {
	cached, err := u.rollupCache.Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Rollup cache read failed; computing instead")
	}
	if cached != nil {
		return cached, dto.RollupSourceCache, nil
	}

	payload, err := u.computeRollups(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := u.rollupCache.Set(ctx, payload); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to store rollup cache entry")
	}
	return payload, dto.RollupSourceComputed, nil
}

// computeRollups sums latest like and comment counts per channel. Channels
// with no videos still appear, with zero sums.
func (u *StatsUseCase) computeRollups(ctx context.Context) (*dto.ChannelRollupsPayload, error) {
	channels, err := u.channelRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for rollup: %w", err)
	}
	videos, err := u.videoRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos for rollup: %w", err)
	}
	byVideo, err := u.resolveLatest(ctx)
	if err != nil {
		return nil, err
	}

	byChannel := make(map[int64]*dto.ChannelRollup, len(channels))
	rollups := make([]dto.ChannelRollup, 0, len(channels))
	for _, ch := range channels {
		rollups = append(rollups, dto.ChannelRollup{
			ChannelID:   ch.ID,
			ExternalID:  ch.ExternalID,
			ChannelName: ch.Name,
		})
		byChannel[ch.ID] = &rollups[len(rollups)-1]
	}
	for _, v := range videos {
		rollup, ok := byChannel[v.ChannelID]
		if !ok {
			continue
		}
		rollup.VideoCount++
		if s, found := byVideo[v.ID]; found {
			rollup.TotalLikes += ParseCount(s.Stats[model.MetricLikes])
			rollup.TotalComments += ParseCount(s.Stats[model.MetricComments])
		}
	}
	return &dto.ChannelRollupsPayload{Rollups: rollups, ComputedAt: time.Now().UTC()}, nil
}

func normalizeMetric(metric string) (string, error) {
	switch metric {
	case "", model.MetricViews:
		return model.MetricViews, nil
	case model.MetricLikes, model.MetricComments:
		return metric, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
}
