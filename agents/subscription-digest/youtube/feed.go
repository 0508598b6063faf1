package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"digest-stack/internal/models"
	"digest-stack/shared/config"
	"digest-stack/shared/logging"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	ErrNoCredential    = errors.New("no YouTube credential configured")
	ErrChannelRequired = errors.New("a channel id is required to list subscriptions with an API key (set YOUTUBE_CHANNEL_ID)")
)

const (
	maxSubscriptionsPage = 50
	activitiesPerChannel = 10
)

// sampleUpdates stand in for the feed when only a placeholder key is set.
var sampleUpdates = []models.UpdateRecord{
	{ChannelName: "Example Channel 1", Title: "New Video Uploaded!", Kind: models.UpdateUpload},
	{ChannelName: "Example Channel 2", Title: "Check out our latest community post!", Kind: models.UpdateBulletin},
}

// Feed lists recent activity from the channels a user subscribes to.
type Feed struct {
	service *youtube.Service
	config  *config.YouTubeConfig
	auth    *authorizer
	initErr error
	limiter *rate.Limiter
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewFeed authenticates with OAuth when a client id and secret are set,
// otherwise with the API key. Construction problems are reported by
// FetchUpdates so a digest run can still complete.
func NewFeed(ctx context.Context, cfg *config.YouTubeConfig, logger logrus.FieldLogger) *Feed {
	return newFeed(ctx, cfg, os.Stderr, logger)
}

func newFeed(ctx context.Context, cfg *config.YouTubeConfig, prompt io.Writer, logger logrus.FieldLogger) *Feed {
	f := newFeedWithService(nil, cfg, logger)

	var opts []option.ClientOption
	switch {
	case cfg.OAuthEnabled():
		auth, err := newAuthorizer(ctx, cfg, prompt, f.logger)
		if err != nil {
			f.initErr = err
			return f
		}
		f.auth = auth
		opts = append(opts, option.WithHTTPClient(auth.HTTPClient(ctx)))
	case cfg.APIKey.IsReal():
		opts = append(opts, option.WithAPIKey(cfg.APIKey.Value()))
	default:
		f.logger.WithField("api_key", cfg.APIKey.Kind().String()).Warn("YouTube API key is not set, update feed is degraded")
		return f
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		f.initErr = fmt.Errorf("failed to create YouTube service: %w", err)
		return f
	}
	f.service = service
	return f
}

func newFeedWithService(service *youtube.Service, cfg *config.YouTubeConfig, logger logrus.FieldLogger) *Feed {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Feed{
		service: service,
		config:  cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrDiscard(logger).WithField("component", "feed"),
		now:     time.Now,
	}
}

// RefreshToken renews the OAuth token ahead of a run. It does nothing when
// the feed uses an API key.
func (f *Feed) RefreshToken() error {
	if f.auth == nil {
		return nil
	}
	return f.auth.Refresh()
}

// Updates is FetchUpdates with errors logged and replaced by an empty list.
func (f *Feed) Updates(ctx context.Context) []models.UpdateRecord {
	updates, err := f.FetchUpdates(ctx)
	if err != nil {
		f.logger.WithError(err).Error("Error fetching subscription updates")
		return []models.UpdateRecord{}
	}
	return updates
}

// FetchUpdates returns the activities published by subscribed channels
// within the lookback window. A channel whose activity call fails is skipped.
func (f *Feed) FetchUpdates(ctx context.Context) ([]models.UpdateRecord, error) {
	if f.service == nil {
		if f.initErr != nil {
			return nil, f.initErr
		}
		switch f.config.APIKey.Kind() {
		case config.CredentialPlaceholder:
			f.logger.Warn("Using placeholder YouTube API key, returning sample updates")
			return append([]models.UpdateRecord(nil), sampleUpdates...), nil
		default:
			return nil, ErrNoCredential
		}
	}

	subs, err := f.subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	f.logger.WithField("channels", len(subs)).Info("Found subscriptions")

	since := f.now().Add(-time.Duration(f.config.LookbackHours) * time.Hour)
	updates := []models.UpdateRecord{}
	for _, sub := range subs {
		if sub.Snippet == nil || sub.Snippet.ResourceId == nil {
			continue
		}
		channelID := sub.Snippet.ResourceId.ChannelId
		log := f.logger.WithField("channel_id", channelID)

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := f.service.Activities.List([]string{"snippet", "contentDetails"}).
			ChannelId(channelID).
			PublishedAfter(since.UTC().Format(time.RFC3339)).
			MaxResults(activitiesPerChannel).
			Context(ctx).
			Do()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warn("Failed to list channel activities, skipping")
			continue
		}

		for _, item := range resp.Items {
			if u, ok := toUpdate(item, sub.Snippet.Title); ok {
				updates = append(updates, u)
			}
		}
	}

	f.logger.WithField("updates", len(updates)).Info("Fetched subscription updates")
	return updates, nil
}

func (f *Feed) subscriptions(ctx context.Context) ([]*youtube.Subscription, error) {
	limit := f.config.MaxChannels
	if limit <= 0 || limit > maxSubscriptionsPage {
		limit = maxSubscriptionsPage
	}

	call := f.service.Subscriptions.List([]string{"snippet"}).
		MaxResults(int64(limit)).
		Order("alphabetical")
	switch {
	case f.auth != nil:
		call = call.Mine(true)
	case f.config.ChannelID != "":
		call = call.ChannelId(f.config.ChannelID)
	default:
		return nil, ErrChannelRequired
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	subs := resp.Items
	if len(subs) > limit {
		subs = subs[:limit]
	}
	return subs, nil
}

func toUpdate(a *youtube.Activity, fallbackChannel string) (models.UpdateRecord, bool) {
	if a == nil || a.Snippet == nil {
		return models.UpdateRecord{}, false
	}

	u := models.UpdateRecord{
		ChannelName: a.Snippet.ChannelTitle,
		Title:       a.Snippet.Title,
		Kind:        models.UpdateKind(a.Snippet.Type),
	}
	if u.ChannelName == "" {
		u.ChannelName = fallbackChannel
	}
	if t, err := time.Parse(time.RFC3339, a.Snippet.PublishedAt); err == nil {
		u.PublishedAt = t
	}
	if cd := a.ContentDetails; cd != nil {
		switch {
		case cd.Upload != nil:
			u.VideoID = cd.Upload.VideoId
		case cd.PlaylistItem != nil && cd.PlaylistItem.ResourceId != nil:
			u.VideoID = cd.PlaylistItem.ResourceId.VideoId
		case cd.Recommendation != nil && cd.Recommendation.ResourceId != nil:
			u.VideoID = cd.Recommendation.ResourceId.VideoId
		}
	}
	return u, true
}
