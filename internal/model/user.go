package model

import "time"

// ContentPillars describe the viewer's own brand, used by the rewriter.
type ContentPillars struct {
	PrimaryNarrative string   `json:"primary_narrative"`
	Topics           []string `json:"topics"`
	Tone             string   `json:"tone"`
	Audience         string   `json:"audience"`
}

// UserCreate is the payload for registering a viewer.
type UserCreate struct {
	Username        string          `json:"username"`
	InstagramHandle *string         `json:"instagram_handle"`
	ContentPillars  *ContentPillars `json:"content_pillars,omitempty"`
	NicheTags       []string        `json:"niche_tags"`
	PushToken       *string         `json:"push_token,omitempty"`
}

// User as returned by the backend.
type User struct {
	ID                  int64           `json:"id"`
	Username            string          `json:"username"`
	InstagramHandle     *string         `json:"instagram_handle"`
	ContentPillars      *ContentPillars `json:"content_pillars"`
	NicheTags           []string        `json:"niche_tags"`
	NotificationEnabled bool            `json:"notification_enabled"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TrackedCreator is a competitor account watched for the viewer.
type TrackedCreator struct {
	ID              int64      `json:"id"`
	InstagramHandle string     `json:"instagram_handle"`
	DisplayName     *string    `json:"display_name"`
	FollowerCount   *int64     `json:"follower_count"`
	AvgViews        *float64   `json:"avg_views"`
	AvgLikes        *float64   `json:"avg_likes"`
	AvgComments     *float64   `json:"avg_comments"`
	LastScrapedAt   *time.Time `json:"last_scraped_at"`
	IsActive        bool       `json:"is_active"`
}
