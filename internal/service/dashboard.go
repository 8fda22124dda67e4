package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"spikeradar/internal/alerting"
	"spikeradar/internal/cache"
	"spikeradar/internal/clock"
	"spikeradar/internal/config"
	"spikeradar/internal/fetcher"
	"spikeradar/internal/lifecycle"
	"spikeradar/internal/metrics"
	"spikeradar/internal/model"
	"spikeradar/internal/scan"
	"spikeradar/internal/scheduler"
	"spikeradar/internal/storage"
	"spikeradar/internal/version"
)

const defaultActionTimeout = 15 * time.Second

// Deps are the collaborators of a Dashboard. Only Backend is required.
type Deps struct {
	Backend  fetcher.Backend
	Notifier alerting.Notifier
	Journal  storage.ActionStore
	Scans    storage.ScanStore
	Cache    cache.SnapshotCache
	Clock    clock.Clock
	// OnChange runs after any renderable state changed. It must not block.
	OnChange func()
}

// Stats is the dashboard header.
type Stats struct {
	ActiveSpikes int
	Pending      int
	Total        int
	LastScanAt   *time.Time
}

// View is one consistent read of the session for rendering.
type View struct {
	SessionID     uuid.UUID
	Alerts        []model.Alert
	Expanded      []model.AlertID
	AlertsLoading bool
	AlertsErr     string
	AlertsUpdated time.Time
	Feed          scheduler.State[model.VelocityFeed]
	Scan          scan.Snapshot
	Stats         Stats
	ActionErr     string
}

// Dashboard is one viewer session: the alert store, both pollers, the scan
// workflow and the background status writes.
type Dashboard struct {
	userID        int64
	query         model.AlertQuery
	notifyOn      bool
	minUrgency    model.Urgency
	lockKey       int64
	scanTimeout   time.Duration
	actionTimeout time.Duration

	backend  fetcher.Backend
	notifier alerting.Notifier
	journal  storage.ActionStore
	scans    storage.ScanStore
	locker   storage.AdvisoryLocker
	cache    cache.SnapshotCache
	clock    clock.Clock
	onChange func()
	logger   zerolog.Logger

	sessionID uuid.UUID
	store     *lifecycle.Store
	alerts    *scheduler.Poller[model.AlertFeed]
	feed      *scheduler.Poller[model.VelocityFeed]
	scan      *scan.Workflow

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	seen       map[model.AlertID]struct{}
	seeded     bool
	actionErr  string
	lastScanAt *time.Time
	bg         sync.WaitGroup
}

// New wires a session from configuration.
func New(cfg *config.Config, deps Deps, logger zerolog.Logger) *Dashboard {
	if deps.Backend == nil {
		panic("service backend must not be nil")
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	var locker storage.AdvisoryLocker
	if l, ok := deps.Journal.(storage.AdvisoryLocker); ok {
		locker = l
	}

	sessionID := uuid.New()
	d := &Dashboard{
		userID: cfg.App.UserID,
		query: model.AlertQuery{
			Urgency: model.Urgency(cfg.Alerts.Urgency),
			Status:  cfg.Alerts.Status,
			Limit:   cfg.ResolveLimit(0),
		},
		notifyOn:      cfg.Alerting.Enabled && deps.Notifier != nil,
		minUrgency:    model.Urgency(cfg.Alerting.MinUrgency),
		lockKey:       cfg.Alerting.AdvisoryLockKey,
		scanTimeout:   cfg.Scan.Timeout,
		actionTimeout: cfg.API.RequestTimeout,
		backend:       deps.Backend,
		notifier:      deps.Notifier,
		journal:       deps.Journal,
		scans:         deps.Scans,
		locker:        locker,
		cache:         deps.Cache,
		clock:         clk,
		onChange:      deps.OnChange,
		sessionID:     sessionID,
		seen:          make(map[model.AlertID]struct{}),
		logger: logger.With().
			Str("component", "service").
			Str("session_id", sessionID.String()).
			Int64("user_id", cfg.App.UserID).
			Logger(),
	}
	if d.actionTimeout <= 0 {
		d.actionTimeout = defaultActionTimeout
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())

	d.store = lifecycle.NewStore(d.storeChanged)
	d.alerts = scheduler.New(d.fetchAlerts, scheduler.Options[model.AlertFeed]{
		Name:     "alerts",
		Interval: cfg.Polling.AlertsInterval,
		Clock:    clk,
		OnUpdate: d.alertsUpdated,
	}, logger)
	d.feed = scheduler.New(d.fetchFeed, scheduler.Options[model.VelocityFeed]{
		Name:     "feed",
		Interval: cfg.Polling.FeedInterval,
		Clock:    clk,
		OnUpdate: d.feedUpdated,
	}, logger)
	d.scan = scan.New(d.runScan, scan.Options{
		ResultWindow: cfg.Scan.ResultWindow,
		Clock:        clk,
		OnChange:     func(scan.Snapshot) { d.changed() },
		OnComplete:   d.scanCompleted,
	}, logger)
	return d
}

// SessionID identifies this session in logs and journal rows.
func (d *Dashboard) SessionID() uuid.UUID {
	return d.sessionID
}

// Start warms the session from the snapshot cache and attaches both pollers.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	d.warmStart(ctx)
	d.alerts.Attach(d.ctx)
	d.feed.Attach(d.ctx)
	d.logger.Info().Msg("session started")
}

// Stop detaches the pollers, closes the scan workflow and waits for
// background work to finish.
func (d *Dashboard) Stop() {
	d.alerts.Detach()
	d.feed.Detach()
	d.scan.Close()
	d.cancel()

	d.scan.Wait()
	d.alerts.Wait()
	d.feed.Wait()
	d.bg.Wait()
	d.logger.Info().Msg("session stopped")
}

// Load performs a single synchronous refresh of alerts and feed. It is the
// one-shot alternative to Start for CLI commands.
func (d *Dashboard) Load(ctx context.Context) error {
	d.alerts.Attach(ctx)
	d.feed.Attach(ctx)
	d.alerts.Wait()
	d.feed.Wait()
	alerts := d.alerts.State()
	feed := d.feed.State()
	d.alerts.Detach()
	d.feed.Detach()

	if alerts.Err != "" {
		return errors.New(alerts.Err)
	}
	if feed.Err != "" {
		d.logger.Warn().Str("error", feed.Err).Msg("velocity feed unavailable")
	}
	return nil
}

// Refresh forces an out-of-band refresh of both resources.
func (d *Dashboard) Refresh() {
	d.alerts.Refresh()
	d.feed.Refresh()
}

// Act marks id acted_on locally and writes it to the backend in the background.
// It reports whether a transition happened.
func (d *Dashboard) Act(id model.AlertID) bool {
	if !d.store.Act(id) {
		return false
	}
	d.writeInBackground(ActionAct, id)
	return true
}

// Dismiss marks id dismissed locally and writes it to the backend in the background.
func (d *Dashboard) Dismiss(id model.AlertID) bool {
	if !d.store.Dismiss(id) {
		return false
	}
	d.writeInBackground(ActionDismiss, id)
	return true
}

// ToggleExpand flips the detail view of id.
func (d *Dashboard) ToggleExpand(id model.AlertID) bool {
	return d.store.ToggleExpand(id)
}

// TriggerScan starts an on-demand scan unless one is running.
func (d *Dashboard) TriggerScan() bool {
	return d.scan.Trigger(d.ctx)
}

// WaitScan blocks until the running scan, if any, has finished.
func (d *Dashboard) WaitScan() {
	d.scan.Wait()
}

// Flush blocks until background writes and notifications have finished.
func (d *Dashboard) Flush() {
	d.bg.Wait()
}

// Alert looks up one alert in the working set.
func (d *Dashboard) Alert(id model.AlertID) (model.Alert, bool) {
	return d.store.Alert(id)
}

// Stats computes the header counters.
func (d *Dashboard) Stats() Stats {
	feed := d.feed.State()
	stats := Stats{
		ActiveSpikes: feed.Data.SpikeCount,
		Pending:      d.store.PendingCount(),
		Total:        d.store.Len(),
		LastScanAt:   feed.Data.LastScanAt,
	}
	d.mu.Lock()
	if d.lastScanAt != nil && (stats.LastScanAt == nil || d.lastScanAt.After(*stats.LastScanAt)) {
		ts := *d.lastScanAt
		stats.LastScanAt = &ts
	}
	d.mu.Unlock()
	return stats
}

// View snapshots everything a renderer needs.
func (d *Dashboard) View() View {
	alerts := d.alerts.State()
	d.mu.Lock()
	actionErr := d.actionErr
	d.mu.Unlock()
	return View{
		SessionID:     d.sessionID,
		Alerts:        d.store.Alerts(),
		Expanded:      d.store.Expanded(),
		AlertsLoading: alerts.Loading,
		AlertsErr:     alerts.Err,
		AlertsUpdated: alerts.UpdatedAt,
		Feed:          d.feed.State(),
		Scan:          d.scan.Snapshot(),
		Stats:         d.Stats(),
		ActionErr:     actionErr,
	}
}

// Health reports session liveness for the metrics endpoint.
func (d *Dashboard) Health() map[string]any {
	alerts := d.alerts.State()
	feed := d.feed.State()
	return map[string]any{
		"session_id":    d.sessionID.String(),
		"user_id":       d.userID,
		"alerts_error":  alerts.Err,
		"feed_error":    feed.Err,
		"alerts_loaded": alerts.HasData,
		"pending":       d.store.PendingCount(),
		"scan":          d.scan.Snapshot().Phase.String(),
		"build":         version.Info(),
	}
}

func (d *Dashboard) fetchAlerts(ctx context.Context) (model.AlertFeed, error) {
	return d.backend.FetchAlerts(ctx, d.userID, d.query)
}

func (d *Dashboard) fetchFeed(ctx context.Context) (model.VelocityFeed, error) {
	return d.backend.FetchVelocityFeed(ctx, d.userID)
}

func (d *Dashboard) runScan(ctx context.Context) (model.ScanResult, error) {
	if d.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.scanTimeout)
		defer cancel()
	}
	return d.backend.TriggerScan(ctx, d.userID)
}

func (d *Dashboard) warmStart(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if feed, err := d.cache.LoadAlerts(ctx, d.userID); err == nil {
		d.alerts.Seed(feed)
		d.ingest(feed.Alerts, false)
		d.logger.Debug().Int("alerts", len(feed.Alerts)).Msg("warm start from cached alerts")
	} else if !errors.Is(err, cache.ErrMiss) {
		d.logger.Warn().Err(err).Msg("load cached alerts")
	}
	if feed, err := d.cache.LoadFeed(ctx, d.userID); err == nil {
		d.feed.Seed(feed)
	} else if !errors.Is(err, cache.ErrMiss) {
		d.logger.Warn().Err(err).Msg("load cached feed")
	}
}

func (d *Dashboard) alertsUpdated(state scheduler.State[model.AlertFeed]) {
	if state.Err != "" {
		metrics.PollsTotal.WithLabelValues("alerts", "error").Inc()
		d.changed()
		return
	}
	metrics.PollsTotal.WithLabelValues("alerts", "ok").Inc()
	d.ingest(state.Data.Alerts, true)

	if d.cache != nil {
		if err := d.cache.SaveAlerts(d.ctx, d.userID, state.Data); err != nil {
			d.logger.Warn().Err(err).Msg("cache alerts")
		}
	}
}

func (d *Dashboard) feedUpdated(state scheduler.State[model.VelocityFeed]) {
	if state.Err != "" {
		metrics.PollsTotal.WithLabelValues("feed", "error").Inc()
		d.changed()
		return
	}
	metrics.PollsTotal.WithLabelValues("feed", "ok").Inc()
	metrics.ActiveSpikes.Set(float64(state.Data.SpikeCount))

	if d.cache != nil {
		if err := d.cache.SaveFeed(d.ctx, d.userID, state.Data); err != nil {
			d.logger.Warn().Err(err).Msg("cache feed")
		}
	}
	d.changed()
}

// ingest applies a fetched alert list and dispatches notifications for alerts
// first seen after the initial load.
func (d *Dashboard) ingest(alerts []model.Alert, notify bool) {
	d.store.Ingest(alerts)

	fresh := d.markSeen(alerts)
	if notify && len(fresh) > 0 {
		d.dispatch(fresh)
	}
}

func (d *Dashboard) scanCompleted(result model.ScanResult, err error) {
	metrics.ScansTotal.WithLabelValues(metrics.Outcome(err)).Inc()

	rec := storage.ScanRecord{
		SessionID:       d.sessionID,
		UserID:          d.userID,
		PostsScanned:    result.PostsScanned,
		SpikesDetected:  result.SpikesDetected,
		AlertsGenerated: result.AlertsGenerated,
	}
	if err != nil {
		msg := err.Error()
		rec.Error = &msg
	}
	if d.scans != nil {
		if _, jerr := d.scans.RecordScan(context.WithoutCancel(d.ctx), rec); jerr != nil {
			d.logger.Warn().Err(jerr).Msg("journal scan")
		}
	}
	if err != nil {
		return
	}

	now := d.clock.Now()
	d.mu.Lock()
	d.lastScanAt = &now
	d.mu.Unlock()
	d.Refresh()
}

func (d *Dashboard) storeChanged() {
	metrics.PendingAlerts.Set(float64(d.store.PendingCount()))
	d.changed()
}

func (d *Dashboard) changed() {
	if d.onChange != nil {
		d.onChange()
	}
}
