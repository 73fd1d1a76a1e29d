package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
	"tube-pulse/usecase"
)

func newStatsFixture() (*MockChannelRepository, *MockVideoRepository, *MockSnapshotRepository, *MockRollupCache, usecase.IStatsUseCase) {
	channelRepo := new(MockChannelRepository)
	videoRepo := new(MockVideoRepository)
	snapshotRepo := new(MockSnapshotRepository)
	rollupCache := new(MockRollupCache)
	uc := usecase.NewStatsUseCase(channelRepo, videoRepo, snapshotRepo, rollupCache)
	return channelRepo, videoRepo, snapshotRepo, rollupCache, uc
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(1234), usecase.ParseCount("1234"))
	assert.Equal(t, int64(0), usecase.ParseCount(""))
	assert.Equal(t, int64(0), usecase.ParseCount("not-a-number"))
	assert.Equal(t, int64(0), usecase.ParseCount("-5"))
	assert.Equal(t, int64(0), usecase.ParseCount("12.5"))
}

// Ranking uses only the newest snapshot per video. Video A has an older and
// a newer snapshot; the newer one decides its rank.
func TestTopVideos_LatestSnapshotWins(t *testing.T) {
	_, videoRepo, snapshotRepo, _, uc := newStatsFixture()

	t3 := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{
		{ID: "vid-a", ChannelID: 1, Title: "A"},
		{ID: "vid-b", ChannelID: 2, Title: "B"},
	}, nil)
	// The store resolves latest-per-video; vid-a's older likes=10 row
	// never surfaces here.
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-a", Stats: map[string]string{"likes": "30"}, RecordedAt: t3},
		{VideoID: "vid-b", Stats: map[string]string{"likes": "20"}, RecordedAt: t3.Add(-24 * time.Hour)},
	}, nil)

	ranked, err := uc.TopVideos(context.Background(), "likes", 1)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "vid-a", ranked[0].VideoID)
	assert.Equal(t, int64(30), ranked[0].Value)
	assert.Equal(t, t3, ranked[0].RecordedAt)
}

// Videos that never received a snapshot still rank, with value zero.
func TestTopVideos_ZeroSnapshotVideosIncluded(t *testing.T) {
	_, videoRepo, snapshotRepo, _, uc := newStatsFixture()

	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{
		{ID: "vid-a", ChannelID: 1},
		{ID: "vid-b", ChannelID: 1},
	}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-a", Stats: map[string]string{"views": "100"}},
	}, nil)

	ranked, err := uc.TopVideos(context.Background(), "views", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "vid-a", ranked[0].VideoID)
	assert.True(t, ranked[0].HasSnapshot)
	assert.Equal(t, "vid-b", ranked[1].VideoID)
	assert.Equal(t, int64(0), ranked[1].Value)
	assert.False(t, ranked[1].HasSnapshot)
}

// Equal values break ties by video id ascending, so repeated queries return
// a stable order.
func TestTopVideos_TieBreakByVideoID(t *testing.T) {
	_, videoRepo, snapshotRepo, _, uc := newStatsFixture()

	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{
		{ID: "vid-z", ChannelID: 1},
		{ID: "vid-a", ChannelID: 1},
	}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-z", Stats: map[string]string{"views": "50"}},
		{VideoID: "vid-a", Stats: map[string]string{"views": "50"}},
	}, nil)

	ranked, err := uc.TopVideos(context.Background(), "views", 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "vid-a", ranked[0].VideoID)
	assert.Equal(t, "vid-z", ranked[1].VideoID)
}

func TestTopVideos_UnknownMetric(t *testing.T) {
	_, _, _, _, uc := newStatsFixture()
	_, err := uc.TopVideos(context.Background(), "dislikes", 5)
	require.Error(t, err)
}

func TestTopVideoPerChannel(t *testing.T) {
	_, videoRepo, snapshotRepo, _, uc := newStatsFixture()

	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{
		{ID: "vid-a1", ChannelID: 1},
		{ID: "vid-a2", ChannelID: 1},
		{ID: "vid-b1", ChannelID: 2},
	}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-a1", Stats: map[string]string{"views": "10"}},
		{VideoID: "vid-a2", Stats: map[string]string{"views": "90"}},
		{VideoID: "vid-b1", Stats: map[string]string{"views": "40"}},
	}, nil)

	rows, err := uc.TopVideoPerChannel(context.Background(), "views")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ChannelID)
	assert.Equal(t, "vid-a2", rows[0].VideoID)
	assert.Equal(t, int64(2), rows[1].ChannelID)
	assert.Equal(t, "vid-b1", rows[1].VideoID)
}

func TestGetChannelRollups_CacheHit(t *testing.T) {
	channelRepo, videoRepo, snapshotRepo, rollupCache, uc := newStatsFixture()

	cached := &dto.ChannelRollupsPayload{
		Rollups:    []dto.ChannelRollup{{ChannelID: 1, TotalLikes: 77}},
		ComputedAt: time.Now().UTC().Add(-10 * time.Minute),
	}
	rollupCache.On("Get", mock.Anything).Return(cached, nil)

	payload, source, err := uc.GetChannelRollups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.RollupSourceCache, source)
	assert.Equal(t, cached, payload)
	channelRepo.AssertNotCalled(t, "ListAll", mock.Anything)
	videoRepo.AssertNotCalled(t, "ListAll", mock.Anything)
	snapshotRepo.AssertNotCalled(t, "LatestPerVideo", mock.Anything, mock.Anything)
	rollupCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestGetChannelRollups_CacheMissComputesAndStores(t *testing.T) {
	channelRepo, videoRepo, snapshotRepo, rollupCache, uc := newStatsFixture()

	rollupCache.On("Get", mock.Anything).Return(nil, nil)
	channelRepo.On("ListAll", mock.Anything).Return([]model.Channel{
		{ID: 1, ExternalID: "UCone", Name: "One"},
		{ID: 2, ExternalID: "UCtwo", Name: "Two"},
	}, nil)
	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{
		{ID: "vid-a", ChannelID: 1},
		{ID: "vid-b", ChannelID: 1},
	}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-a", Stats: map[string]string{"likes": "5", "comments": "2"}},
		{VideoID: "vid-b", Stats: map[string]string{"likes": "7", "comments": "1"}},
	}, nil)
	rollupCache.On("Set", mock.Anything, mock.Anything).Return(nil)

	payload, source, err := uc.GetChannelRollups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.RollupSourceComputed, source)
	require.Len(t, payload.Rollups, 2)

	one := payload.Rollups[0]
	assert.Equal(t, int64(1), one.ChannelID)
	assert.Equal(t, 2, one.VideoCount)
	assert.Equal(t, int64(12), one.TotalLikes)
	assert.Equal(t, int64(3), one.TotalComments)

	// A channel with no videos still rolls up, at zero.
	two := payload.Rollups[1]
	assert.Equal(t, int64(2), two.ChannelID)
	assert.Equal(t, 0, two.VideoCount)
	assert.Equal(t, int64(0), two.TotalLikes)

	rollupCache.AssertCalled(t, "Set", mock.Anything, mock.Anything)
}

// A broken cache degrades to a straight computation instead of failing the
// read.
func TestGetChannelRollups_CacheErrorFallsBack(t *testing.T) {
	channelRepo, videoRepo, snapshotRepo, rollupCache, uc := newStatsFixture()

	rollupCache.On("Get", mock.Anything).Return(nil, errors.New("redis down"))
	rollupCache.On("Set", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	channelRepo.On("ListAll", mock.Anything).Return([]model.Channel{{ID: 1}}, nil)
	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{}, nil)

	payload, source, err := uc.GetChannelRollups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.RollupSourceComputed, source)
	require.Len(t, payload.Rollups, 1)
}

// An empty metric defaults to views.
func TestTopVideos_DefaultMetric(t *testing.T) {
	_, videoRepo, snapshotRepo, _, uc := newStatsFixture()

	videoRepo.On("ListAll", mock.Anything).Return([]model.Video{{ID: "vid-a", ChannelID: 1}}, nil)
	snapshotRepo.On("LatestPerVideo", mock.Anything, []string(nil)).Return([]model.StatsSnapshot{
		{VideoID: "vid-a", Stats: map[string]string{"views": "9"}},
	}, nil)

	ranked, err := uc.TopVideos(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, model.MetricViews, ranked[0].Metric)
	assert.Equal(t, int64(9), ranked[0].Value)
}
