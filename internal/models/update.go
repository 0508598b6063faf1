package models

import (
	"fmt"
	"time"
)

// UpdateKind is the activity type reported by the subscription feed.
type UpdateKind string

const (
	UpdateUpload         UpdateKind = "upload"
	UpdateBulletin       UpdateKind = "bulletin"
	UpdatePlaylistItem   UpdateKind = "playlistItem"
	UpdateLike           UpdateKind = "like"
	UpdateFavorite       UpdateKind = "favorite"
	UpdateSubscription   UpdateKind = "subscription"
	UpdateRecommendation UpdateKind = "recommendation"
	UpdateSocial         UpdateKind = "social"
	UpdateChannelItem    UpdateKind = "channelItem"
	UpdatePromotedItem   UpdateKind = "promotedItem"
)

type UpdateRecord struct {
	ChannelName string     `json:"channel_name"`
	Title       string     `json:"update_title"`
	Kind        UpdateKind `json:"type"`
	VideoID     string     `json:"video_id,omitempty"`
	PublishedAt time.Time  `json:"published_at,omitempty"`
}

// Line renders the record the way it appears in the digest block.
func (u UpdateRecord) Line() string {
	return fmt.Sprintf("- Channel: %s, Title: %s (Type: %s)",
		orNA(u.ChannelName), orNA(u.Title), orNA(string(u.Kind)))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
