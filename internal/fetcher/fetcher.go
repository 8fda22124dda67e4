package fetcher

import (
	"context"

	"spikeradar/internal/model"
)

// AlertFetcher lists and loads alerts for a user.
type AlertFetcher interface {
	FetchAlerts(ctx context.Context, userID int64, query model.AlertQuery) (model.AlertFeed, error)
	FetchAlert(ctx context.Context, userID int64, id model.AlertID) (model.Alert, error)
}

// FeedFetcher loads the velocity feed.
type FeedFetcher interface {
	FetchVelocityFeed(ctx context.Context, userID int64) (model.VelocityFeed, error)
}

// Scanner triggers an on-demand scan.
type Scanner interface {
	TriggerScan(ctx context.Context, userID int64) (model.ScanResult, error)
}

// AlertActioner writes the server-authoritative alert status.
type AlertActioner interface {
	ActOnAlert(ctx context.Context, userID int64, id model.AlertID) error
	DismissAlert(ctx context.Context, userID int64, id model.AlertID) error
}

// Backend is everything a dashboard session needs.
type Backend interface {
	AlertFetcher
	FeedFetcher
	Scanner
	AlertActioner
}

// Accounts covers the user and tracked-creator passthrough endpoints.
type Accounts interface {
	CreateUser(ctx context.Context, user model.UserCreate) (model.User, error)
	GetUser(ctx context.Context, userID int64) (model.User, error)
	UpdatePillars(ctx context.Context, userID int64, pillars model.ContentPillars) (model.User, error)
	UpdatePushToken(ctx context.Context, userID int64, token string) error
	TrackCreator(ctx context.Context, userID int64, handle string) (model.TrackedCreator, error)
	ListCreators(ctx context.Context, userID int64) ([]model.TrackedCreator, error)
	UntrackCreator(ctx context.Context, userID int64, creatorID int64) error
}
