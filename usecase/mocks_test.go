package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
	"tube-pulse/domain/repository"
)

// Mock implementations of the repository interfaces used by the use cases.

type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) ResolveIdentifier(raw string) (dto.ResolvedIdentifier, bool) {
	args := m.Called(raw)
	return args.Get(0).(dto.ResolvedIdentifier), args.Bool(1)
}

func (m *MockUpstream) FetchChannelMetadata(ctx context.Context, ident dto.ResolvedIdentifier, acct repository.IQuotaAccountant) (*dto.ChannelDescriptor, error) {
	args := m.Called(ctx, ident, acct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChannelDescriptor), args.Error(1)
}

func (m *MockUpstream) ListUploadedItems(ctx context.Context, playlistID string, acct repository.IQuotaAccountant) ([]dto.VideoDescriptor, error) {
	args := m.Called(ctx, playlistID, acct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.VideoDescriptor), args.Error(1)
}

func (m *MockUpstream) FetchStatisticsBatch(ctx context.Context, videoIDs []string, acct repository.IQuotaAccountant) []dto.StatsBatchResult {
	args := m.Called(ctx, videoIDs, acct)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]dto.StatsBatchResult)
}

type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) Upsert(ctx context.Context, desc *dto.ChannelDescriptor) (*model.Channel, error) {
	args := m.Called(ctx, desc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *MockChannelRepository) GetByID(ctx context.Context, id int64) (*model.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *MockChannelRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Channel, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Channel), args.Error(1)
}

func (m *MockChannelRepository) List(ctx context.Context, limit, offset int) ([]model.Channel, int64, error) {
	args := m.Called(ctx, limit, offset)
	var channels []model.Channel
	if args.Get(0) != nil {
		channels = args.Get(0).([]model.Channel)
	}
	return channels, args.Get(1).(int64), args.Error(2)
}

func (m *MockChannelRepository) ListAll(ctx context.Context) ([]model.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Channel), args.Error(1)
}

type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) UpsertBulk(ctx context.Context, videos []dto.VideoDescriptor, channelID int64) error {
	args := m.Called(ctx, videos, channelID)
	return args.Error(0)
}

func (m *MockVideoRepository) List(ctx context.Context, limit, offset int, q string) ([]model.Video, int64, error) {
	args := m.Called(ctx, limit, offset, q)
	var videos []model.Video
	if args.Get(0) != nil {
		videos = args.Get(0).([]model.Video)
	}
	return videos, args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoRepository) ListAll(ctx context.Context) ([]model.Video, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockVideoRepository) ListByChannel(ctx context.Context, channelID int64) ([]model.Video, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Video), args.Error(1)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) AppendBulk(ctx context.Context, snapshots []model.StatsSnapshot) (int, error) {
	args := m.Called(ctx, snapshots)
	return args.Int(0), args.Error(1)
}

func (m *MockSnapshotRepository) ListByVideo(ctx context.Context, videoID string) ([]model.StatsSnapshot, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StatsSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) LatestPerVideo(ctx context.Context, videoIDs []string) ([]model.StatsSnapshot, error) {
	args := m.Called(ctx, videoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StatsSnapshot), args.Error(1)
}

type MockRollupCache struct {
	mock.Mock
}

func (m *MockRollupCache) Get(ctx context.Context) (*dto.ChannelRollupsPayload, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ChannelRollupsPayload), args.Error(1)
}

func (m *MockRollupCache) Set(ctx context.Context, payload *dto.ChannelRollupsPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockRollupCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
