package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"spikeradar/internal/alerting"
	"spikeradar/internal/cache"
	"spikeradar/internal/config"
	"spikeradar/internal/demo"
	"spikeradar/internal/fetcher"
	"spikeradar/internal/service"
	"spikeradar/internal/storage"
)

// Remote is the full backend surface: alert session plus account endpoints.
type Remote interface {
	fetcher.Backend
	fetcher.Accounts
}

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	In     io.Reader

	remote Remote
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

// backend returns the HTTP client, or the in-memory fixture backend in demo mode.
// The same instance is reused for the lifetime of the App.
func (a *App) backend() (Remote, error) {
	if a.remote != nil {
		return a.remote, nil
	}
	if a.Config.Demo.Enabled {
		b, err := demo.New(demo.Options{ScanDelay: a.Config.Demo.ScanDelay}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.Logger.Info().Msg("demo mode: serving fixture data")
		a.remote = b
		return b, nil
	}
	a.remote = fetcher.New(fetcher.Options{
		BaseURL:   a.Config.API.BaseURL,
		Timeout:   a.Config.API.RequestTimeout,
		UserAgent: a.Config.API.UserAgent,
	}, a.Logger)
	return a.remote, nil
}

// userID resolves the session user; demo mode always uses the fixture user.
func (a *App) userID() int64 {
	if a.Config.Demo.Enabled {
		return demo.UserID
	}
	return a.Config.App.UserID
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) openCache(ctx context.Context) (cache.SnapshotCache, func(), error) {
	if a.Config.Cache.Addr == "" {
		return nil, nil, nil
	}
	client, err := cache.NewClient(ctx, a.Config.Cache)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedis(client, a.Config.Cache.TTL), func() { _ = client.Close() }, nil
}

// session wires a Dashboard with every configured collaborator. cfg may be a
// per-command copy of the App config.
func (a *App) session(ctx context.Context, cfg *config.Config, onChange func()) (*service.Dashboard, func(), error) {
	remote, err := a.backend()
	if err != nil {
		return nil, nil, err
	}
	if cfg.App.UserID != a.userID() {
		copied := *cfg
		copied.App.UserID = a.userID()
		cfg = &copied
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := service.Deps{Backend: remote, OnChange: onChange}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		a.Logger.Debug().Msg("database.dsn not configured; action journal disabled")
	} else {
		closers = append(closers, closeStore)
		deps.Journal = store
		deps.Scans = store
	}

	snapshots, closeCache, err := a.openCache(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("snapshot cache unavailable; continuing without warm start")
	} else if snapshots != nil {
		closers = append(closers, closeCache)
		deps.Cache = snapshots
	}

	if notifier := a.newNotifier(); notifier != nil {
		deps.Notifier = notifier
	}

	dash := service.New(cfg, deps, a.Logger)
	return dash, func() {
		dash.Stop()
		cleanup()
	}, nil
}

// AlertsOptions configure the alerts listing.
type AlertsOptions struct {
	Urgency string
	Status  string
	Limit   int
	Expand  []string
}

// FeedOptions configure the feed listing.
type FeedOptions struct {
	Rows int
}

// ExportOptions hold parameters for exporting the velocity feed.
type ExportOptions struct {
	PNGPath string
	CSVPath string
	MaxRows int
}

// HistoryOptions configure the journal listing.
type HistoryOptions struct {
	Limit int
}

// PruneOptions configure journal retention.
type PruneOptions struct {
	OlderThan time.Duration
}

// RunOptions configure the interactive dashboard.
type RunOptions struct {
	Interactive bool
	Clear       bool
}
