// Package demo serves a fixed competitor dataset from memory so the dashboard
// runs without a backend.
package demo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/clock"
	"spikeradar/internal/fetcher"
	"spikeradar/internal/model"
)

// DefaultScanDelay mimics the latency of a real scan.
const DefaultScanDelay = 2200 * time.Millisecond

// UserID is the id of the fixture user.
const UserID int64 = 1

//go:embed fixtures.json
var fixturesJSON []byte

type fixtureAlert struct {
	model.Alert
	CreatedMinutesAgo int `json:"created_minutes_ago"`
}

// UnmarshalJSON shadows the promoted model.Alert decoder, which would
// otherwise swallow created_minutes_ago.
func (f *fixtureAlert) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &f.Alert); err != nil {
		return err
	}
	var age struct {
		CreatedMinutesAgo int `json:"created_minutes_ago"`
	}
	if err := json.Unmarshal(data, &age); err != nil {
		return err
	}
	f.CreatedMinutesAgo = age.CreatedMinutesAgo
	return nil
}

type fixtures struct {
	User     model.User               `json:"user"`
	Creators []model.TrackedCreator   `json:"creators"`
	Alerts   []fixtureAlert           `json:"alerts"`
	Feed     []model.VelocityFeedItem `json:"feed"`
}

// Options tune the demo backend.
type Options struct {
	ScanDelay time.Duration
	Clock     clock.Clock
}

// Backend is an in-memory stand-in for the spike backend.
type Backend struct {
	opts   Options
	logger zerolog.Logger

	mu          sync.Mutex
	users       map[int64]model.User
	pushTokens  map[int64]string
	creators    map[int64][]model.TrackedCreator
	alerts      []model.Alert
	feed        []model.VelocityFeedItem
	lastScanAt  *time.Time
	nextUserID  int64
	nextCreator int64
}

var (
	_ fetcher.Backend  = (*Backend)(nil)
	_ fetcher.Accounts = (*Backend)(nil)
)

// New loads the embedded fixtures. Alert creation times are placed relative
// to the clock's current time.
func New(opts Options, logger zerolog.Logger) (*Backend, error) {
	if opts.ScanDelay < 0 {
		opts.ScanDelay = 0
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	var fx fixtures
	if err := json.Unmarshal(fixturesJSON, &fx); err != nil {
		return nil, fmt.Errorf("decode demo fixtures: %w", err)
	}

	now := opts.Clock.Now().UTC()
	alerts := make([]model.Alert, 0, len(fx.Alerts))
	for _, fa := range fx.Alerts {
		alert := fa.Alert
		alert.CreatedAt = now.Add(-time.Duration(fa.CreatedMinutesAgo) * time.Minute)
		alerts = append(alerts, alert)
	}

	fx.User.CreatedAt = now
	b := &Backend{
		opts:        opts,
		logger:      logger.With().Str("component", "demo").Logger(),
		users:       map[int64]model.User{fx.User.ID: fx.User},
		pushTokens:  make(map[int64]string),
		creators:    map[int64][]model.TrackedCreator{fx.User.ID: fx.Creators},
		alerts:      alerts,
		feed:        fx.Feed,
		nextUserID:  fx.User.ID + 1,
		nextCreator: int64(len(fx.Creators)) + 1,
	}
	return b, nil
}

func notFound(what string) error {
	return &fetcher.APIError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

func badRequest(msg string) error {
	return &fetcher.APIError{StatusCode: http.StatusBadRequest, Message: msg}
}

// FetchAlerts lists alerts newest first, filtered like the backend.
func (b *Backend) FetchAlerts(_ context.Context, userID int64, q model.AlertQuery) (model.AlertFeed, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return model.AlertFeed{}, notFound("User")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		return model.AlertFeed{}, &fetcher.APIError{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    "limit must be less than or equal to 100",
		}
	}

	ordered := make([]model.Alert, len(b.alerts))
	copy(ordered, b.alerts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.After(ordered[j].CreatedAt) })

	feed := model.AlertFeed{Alerts: []model.Alert{}}
	for _, alert := range ordered {
		if alert.Status == model.StatusPending {
			feed.PendingCount++
		}
		feed.Total++
		if q.Urgency != "" && alert.Urgency != q.Urgency {
			continue
		}
		if q.Status != "" && string(alert.Status) != strings.ToLower(q.Status) {
			continue
		}
		if len(feed.Alerts) < limit {
			feed.Alerts = append(feed.Alerts, alert)
		}
	}
	return feed, nil
}

// FetchAlert loads one alert.
func (b *Backend) FetchAlert(_ context.Context, userID int64, id model.AlertID) (model.Alert, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findLocked(userID, id)
	if err != nil {
		return model.Alert{}, err
	}
	return b.alerts[i], nil
}

// ActOnAlert marks an alert acted_on.
func (b *Backend) ActOnAlert(_ context.Context, userID int64, id model.AlertID) error {
	return b.setStatus(userID, id, model.StatusActedOn)
}

// DismissAlert marks an alert dismissed.
func (b *Backend) DismissAlert(_ context.Context, userID int64, id model.AlertID) error {
	return b.setStatus(userID, id, model.StatusDismissed)
}

func (b *Backend) setStatus(userID int64, id model.AlertID, status model.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, err := b.findLocked(userID, id)
	if err != nil {
		return err
	}
	b.alerts[i].Status = status
	return nil
}

func (b *Backend) findLocked(userID int64, id model.AlertID) (int, error) {
	if _, ok := b.users[userID]; !ok {
		return 0, notFound("Alert")
	}
	for i, alert := range b.alerts {
		if alert.ID == id {
			return i, nil
		}
	}
	return 0, notFound("Alert")
}

// FetchVelocityFeed returns every fixture post.
func (b *Backend) FetchVelocityFeed(_ context.Context, userID int64) (model.VelocityFeed, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return model.VelocityFeed{}, notFound("User")
	}
	items := make([]model.VelocityFeedItem, len(b.feed))
	copy(items, b.feed)

	feed := model.VelocityFeed{Items: items}
	for _, item := range items {
		if item.IsSpike {
			feed.SpikeCount++
		}
	}
	if b.lastScanAt != nil {
		ts := *b.lastScanAt
		feed.LastScanAt = &ts
	}
	return feed, nil
}

// TriggerScan waits out the simulated scan latency and reports the fixed
// fixture outcome. It honours ctx cancellation.
func (b *Backend) TriggerScan(ctx context.Context, userID int64) (model.ScanResult, error) {
	b.mu.Lock()
	_, ok := b.users[userID]
	tracked := len(b.activeCreatorsLocked(userID))
	b.mu.Unlock()
	if !ok {
		return model.ScanResult{}, notFound("User")
	}
	if tracked == 0 {
		return model.ScanResult{}, badRequest("No tracked creators")
	}

	if b.opts.ScanDelay > 0 {
		done := make(chan struct{})
		timer := b.opts.Clock.AfterFunc(b.opts.ScanDelay, func() { close(done) })
		select {
		case <-done:
		case <-ctx.Done():
			timer.Stop()
			return model.ScanResult{}, ctx.Err()
		}
	}

	now := b.opts.Clock.Now().UTC()
	b.mu.Lock()
	b.lastScanAt = &now
	b.mu.Unlock()

	b.logger.Debug().Int("creators", tracked).Msg("simulated scan finished")
	return model.ScanResult{PostsScanned: 60, SpikesDetected: 3, AlertsGenerated: 3}, nil
}

// CreateUser registers a user; usernames are unique.
func (b *Backend) CreateUser(_ context.Context, in model.UserCreate) (model.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == in.Username {
			return model.User{}, badRequest("Username already exists")
		}
	}
	user := model.User{
		ID:                  b.nextUserID,
		Username:            in.Username,
		InstagramHandle:     in.InstagramHandle,
		ContentPillars:      in.ContentPillars,
		NicheTags:           in.NicheTags,
		NotificationEnabled: true,
		CreatedAt:           b.opts.Clock.Now().UTC(),
	}
	if user.NicheTags == nil {
		user.NicheTags = []string{}
	}
	b.nextUserID++
	b.users[user.ID] = user
	if in.PushToken != nil {
		b.pushTokens[user.ID] = *in.PushToken
	}
	return user, nil
}

// GetUser loads a user.
func (b *Backend) GetUser(_ context.Context, userID int64) (model.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[userID]
	if !ok {
		return model.User{}, notFound("User")
	}
	return user, nil
}

// UpdatePillars replaces a user's content pillars.
func (b *Backend) UpdatePillars(_ context.Context, userID int64, pillars model.ContentPillars) (model.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[userID]
	if !ok {
		return model.User{}, notFound("User")
	}
	user.ContentPillars = &pillars
	b.users[userID] = user
	return user, nil
}

// UpdatePushToken stores a device token.
func (b *Backend) UpdatePushToken(_ context.Context, userID int64, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return notFound("User")
	}
	b.pushTokens[userID] = token
	return nil
}

// TrackCreator starts watching a handle.
func (b *Backend) TrackCreator(_ context.Context, userID int64, handle string) (model.TrackedCreator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return model.TrackedCreator{}, notFound("User")
	}
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	for _, c := range b.creators[userID] {
		if c.InstagramHandle == handle {
			return model.TrackedCreator{}, badRequest("Already tracking this creator")
		}
	}
	creator := model.TrackedCreator{ID: b.nextCreator, InstagramHandle: handle, IsActive: true}
	b.nextCreator++
	b.creators[userID] = append(b.creators[userID], creator)
	return creator, nil
}

// ListCreators lists active tracked creators.
func (b *Backend) ListCreators(_ context.Context, userID int64) ([]model.TrackedCreator, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[userID]; !ok {
		return nil, notFound("User")
	}
	return b.activeCreatorsLocked(userID), nil
}

// UntrackCreator deactivates a tracked creator.
func (b *Backend) UntrackCreator(_ context.Context, userID int64, creatorID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.creators[userID]
	for i := range list {
		if list[i].ID == creatorID {
			list[i].IsActive = false
			return nil
		}
	}
	return notFound("Creator")
}

func (b *Backend) activeCreatorsLocked(userID int64) []model.TrackedCreator {
	out := []model.TrackedCreator{}
	for _, c := range b.creators[userID] {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}
