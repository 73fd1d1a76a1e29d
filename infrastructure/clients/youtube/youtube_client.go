package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tube-pulse/domain/dto"
	"tube-pulse/domain/model"
	"tube-pulse/domain/repository"
	"tube-pulse/infrastructure/logger"
	"tube-pulse/infrastructure/quota"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// pageSize is the provider maximum for playlist pages and statistics
// batches.
const pageSize = 50

// Client issues read-only calls against the YouTube Data API and normalizes
// responses into internal descriptors. Every call charges its fixed cost
// against the accountant supplied by the caller.
type Client struct {
	service *youtubeapi.Service
}

// Config represents YouTube API configuration
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIKey       string `json:"api_key"`
}

// NewClient creates an upstream client. With an API key alone the client is
// read-only; with OAuth tokens it authenticates as the configured account.
func NewClient(ctx context.Context, config *Config) (repository.IUpstream, error) {
	if (config.AccessToken == "" || config.RefreshToken == "") && config.APIKey != "" {
		service, err := youtubeapi.NewService(ctx, option.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
		}
		return &Client{service: service}, nil
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       []string{youtubeapi.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{
		AccessToken:  config.AccessToken,
		RefreshToken: config.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	}
	service, err := youtubeapi.NewService(ctx, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// FetchChannelMetadata performs a single channels.list call by resolved
// identifier and charges one channel-list unit.
func (c *Client) FetchChannelMetadata(ctx context.Context, ident dto.ResolvedIdentifier, acct repository.IQuotaAccountant) (*dto.ChannelDescriptor, error) {
	call := c.service.Channels.List([]string{"snippet", "statistics", "contentDetails"}).Context(ctx)
	switch ident.Kind {
	case dto.IdentifierChannelID:
		call = call.Id(ident.Value)
	case dto.IdentifierHandle:
		call = call.ForHandle(ident.Value)
	default:
		return nil, repository.ErrUnresolvableIdentifier
	}

	acct.Charge(quota.CostChannelList, "channels.list")
	response, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", ident.Value, err)
	}
	if len(response.Items) == 0 {
		return nil, repository.ErrChannelNotFound
	}
	return convertToChannelDescriptor(response.Items[0]), nil
}

// ListUploadedItems paginates the uploads playlist until no continuation
// token remains, charging one playlist-list unit per page. On a page failure
// it returns the items collected so far plus the error; the pagination loop
// never retries.
func (c *Client) ListUploadedItems(ctx context.Context, playlistID string, acct repository.IQuotaAccountant) ([]dto.VideoDescriptor, error) {
	var items []dto.VideoDescriptor
	pageToken := ""
	for {
		call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			Context(ctx).
			PlaylistId(playlistID).
			MaxResults(pageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		acct.Charge(quota.CostPlaylistList, "playlistItems.list")
		response, err := call.Do()
		if err != nil {
			return items, fmt.Errorf("failed to list playlist %s page: %w", playlistID, err)
		}
		for _, item := range response.Items {
			desc := convertToVideoDescriptor(item)
			if desc.ID == "" {
				continue
			}
			items = append(items, desc)
		}
		if response.NextPageToken == "" {
			break
		}
		pageToken = response.NextPageToken
	}
	return items, nil
}

// FetchStatisticsBatch partitions ids into provider-sized batches, issues
// them concurrently and returns one tagged result per batch. A failed batch
// is logged and reported with Err set; siblings are unaffected.
func (c *Client) FetchStatisticsBatch(ctx context.Context, videoIDs []string, acct repository.IQuotaAccountant) []dto.StatsBatchResult {
	batches := batchVideoIDs(videoIDs, pageSize)
	results := make([]dto.StatsBatchResult, len(batches))

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []string) {
			defer wg.Done()
			stats, err := c.fetchStatistics(ctx, batch, acct)
			if err != nil {
				logger.GetLogger().WithFields(map[string]interface{}{
					"error":    err,
					"videoIds": strings.Join(batch, ","),
				}).Warn("Statistics batch failed; continuing with partial results")
				results[i] = dto.StatsBatchResult{VideoIDs: batch, Err: err}
				return
			}
			results[i] = dto.StatsBatchResult{VideoIDs: batch, Stats: stats}
		}(i, batch)
	}
	wg.Wait()
	return results
}

func (c *Client) fetchStatistics(ctx context.Context, videoIDs []string, acct repository.IQuotaAccountant) ([]dto.StatsDescriptor, error) {
	acct.Charge(quota.CostStatisticsList, "videos.list")
	response, err := c.service.Videos.List([]string{"statistics"}).
		Context(ctx).
		Id(strings.Join(videoIDs, ",")).
		MaxResults(pageSize).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video statistics: %w", err)
	}

	stats := make([]dto.StatsDescriptor, 0, len(response.Items))
	for _, video := range response.Items {
		if video.Statistics == nil {
			continue
		}
		stats = append(stats, dto.StatsDescriptor{
			VideoID: video.Id,
			Stats: map[string]string{
				model.MetricViews:    strconv.FormatUint(video.Statistics.ViewCount, 10),
				model.MetricLikes:    strconv.FormatUint(video.Statistics.LikeCount, 10),
				model.MetricComments: strconv.FormatUint(video.Statistics.CommentCount, 10),
			},
		})
	}
	return stats, nil
}

// batchVideoIDs splits ids into slices of at most size elements.
func batchVideoIDs(videoIDs []string, size int) [][]string {
	if len(videoIDs) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(videoIDs)+size-1)/size)
	for start := 0; start < len(videoIDs); start += size {
		end := start + size
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batches = append(batches, videoIDs[start:end])
	}
	return batches
}

func convertToChannelDescriptor(channel *youtubeapi.Channel) *dto.ChannelDescriptor {
	desc := &dto.ChannelDescriptor{
		ExternalID: channel.Id,
		Name:       channel.Snippet.Title,
	}
	if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Default != nil {
		desc.Thumbnail = channel.Snippet.Thumbnails.Default.Url
	}
	if channel.ContentDetails != nil && channel.ContentDetails.RelatedPlaylists != nil {
		desc.UploadsPlaylistID = channel.ContentDetails.RelatedPlaylists.Uploads
	}
	if channel.Statistics != nil {
		desc.SubscriberCount = int64(channel.Statistics.SubscriberCount)
		desc.ViewCount = int64(channel.Statistics.ViewCount)
		desc.VideoCount = int64(channel.Statistics.VideoCount)
	}
	return desc
}

func convertToVideoDescriptor(item *youtubeapi.PlaylistItem) dto.VideoDescriptor {
	desc := dto.VideoDescriptor{}
	if item.ContentDetails != nil {
		desc.ID = item.ContentDetails.VideoId
	}
	if item.Snippet != nil {
		if desc.ID == "" && item.Snippet.ResourceId != nil {
			desc.ID = item.Snippet.ResourceId.VideoId
		}
		desc.Title = item.Snippet.Title
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Medium != nil {
			desc.Thumbnail = item.Snippet.Thumbnails.Medium.Url
		}
	}
	return desc
}
