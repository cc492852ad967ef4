package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandeepkv93/twodo/internal/client"
	"github.com/sandeepkv93/twodo/internal/config"
	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/notify"
	"github.com/sandeepkv93/twodo/internal/remote"
	"github.com/sandeepkv93/twodo/internal/storage"
	"github.com/sandeepkv93/twodo/internal/store"
	"github.com/sandeepkv93/twodo/internal/telemetry"
	"github.com/sandeepkv93/twodo/internal/update"
)

// app is one process worth of wired collaborators.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	logger  *slog.Logger
	store   *store.Store
	backend update.Backend
	center  *notify.Center
	// nil in local mode
	service *remote.Service

	closers []func() error
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.mode != "" {
		cfg.Mode = config.Mode(strings.ToLower(flags.mode))
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openApp loads the configuration and connects the task store to its
// backing storage. Remote mode pulls the server's tasks before returning.
func openApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, loc: loc, center: notify.New()}
	logger, closeLog, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	if cfg.Mode == config.ModeRemote {
		err = a.openRemote(ctx)
	} else {
		err = a.openLocal(ctx)
	}
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openLocal(ctx context.Context) error {
	repo, err := openRepository(a.cfg.Storage.Path)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, repo.Close)

	n := normalize.New(normalize.WithLocation(a.loc), normalize.WithLogger(a.logger))
	a.store = store.New(n,
		store.WithRepository(repo),
		store.WithLogger(a.logger),
		store.WithCategoryPreset(model.CategoryPreset(a.cfg.Categories.Preset)),
	)
	res := a.store.Load(ctx)
	if err := a.store.LastPersistenceError(); err != nil {
		a.logger.Warn("stored tasks unreadable", "path", a.cfg.Storage.Path, "error", err)
	}
	a.logger.Debug("local store ready", "loaded", res.Loaded, "skipped", res.Skipped)
	a.backend = update.LocalBackend{Store: a.store}
	return nil
}

// openRemote keeps the SQLite file as a cache for server tasks and as the home
// of custom categories, which the server does not store.
func (a *app) openRemote(ctx context.Context) error {
	repo, err := openRepository(a.cfg.Storage.Path)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, repo.Close)

	c := client.New(a.cfg.API.BaseURL, a.cfg.API.Timeout, client.WithLogger(a.logger))

	opts := []normalize.Option{normalize.WithLocation(a.loc), normalize.WithLogger(a.logger)}
	if a.cfg.Telemetry.Enabled {
		d := telemetry.NewDispatcher(c, a.cfg.Telemetry.Buffer,
			telemetry.WithLogger(a.logger),
			telemetry.WithTimeout(a.cfg.API.Timeout),
		)
		d.Start()
		a.closers = append(a.closers, func() error {
			d.Stop()
			stats := d.Stats()
			a.logger.Debug("telemetry stopped", "sent", stats.Sent, "failed", stats.Failed, "dropped", stats.Dropped)
			return nil
		})
		opts = append(opts, normalize.WithEmitter(d))
	}

	a.store = store.New(normalize.New(opts...),
		store.WithRepository(repo),
		store.WithLogger(a.logger),
		store.WithCategoryPreset(model.CategoryPreset(a.cfg.Categories.Preset)),
	)
	a.service = remote.New(c, a.store,
		remote.WithLogger(a.logger),
		remote.WithNotifications(a.center),
	)
	a.store.Load(ctx)
	if _, err := a.service.Pull(ctx); err != nil {
		return fmt.Errorf("load tasks from %s: %w", c.BaseURL(), err)
	}
	a.backend = a.service
	return nil
}

func openRepository(path string) (*storage.SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return storage.OpenSQLite(path)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.logger != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.cfg.API.Timeout)
}

func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

// newLogger writes JSON records to the configured file. Without a file only
// warnings and errors reach fallback.
func newLogger(cfg config.LogConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	level := parseLevel(cfg.Level)
	if cfg.File == "" {
		h := slog.NewTextHandler(fallback, &slog.HandlerOptions{Level: max(level, slog.LevelWarn)})
		return slog.New(h), func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("pid", os.Getpid()), f.Close, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
