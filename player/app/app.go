// Package app wires the application container: config, logging,
// storage, the remote client, the playback manager and the hydration
// scheduler.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/spotless-music/spotless-go/player/auth"
	"github.com/spotless-music/spotless-go/player/config"
	"github.com/spotless-music/spotless-go/player/db"
	"github.com/spotless-music/spotless-go/player/hydrate"
	logpkg "github.com/spotless-music/spotless-go/player/logger"
	"github.com/spotless-music/spotless-go/player/playback"
	"github.com/spotless-music/spotless-go/player/spotify"
	"github.com/spotless-music/spotless-go/player/state"
	"github.com/spotless-music/spotless-go/player/worker"
)

// App wires all application dependencies.
type App struct {
	Config    *config.Config
	Logger    *logpkg.Logger
	DB        *db.Repository
	Pool      *worker.Pool
	State     *state.Store
	Auth      *auth.Service
	Client    *spotify.Client
	Device    *spotify.PollingDevice
	Playback  *playback.Manager
	Scheduler *hydrate.Scheduler
	Build     BuildInfo

	schedulerDone chan struct{}
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// New builds the application container.
func New(ctx context.Context, configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(
		conf.GetString("LogLevel"),
		conf.GetString("LogFormat"),
		conf.GetString("LogDir"),
		conf.GetBool("LogSource"),
	)
	if err != nil {
		return nil, err
	}

	gormLogger := logpkg.NewDBLogger(log.Slog(), mapLogLevel(conf.GetString("GormLogLevel")))
	databasePath := strings.TrimSpace(conf.GetString("Database"))
	if databasePath == "" {
		databasePath = "spotless.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := repo.ConfigurePool(
		conf.GetInt("DBMaxOpenConns"),
		conf.GetInt("DBMaxIdleConns"),
		time.Duration(conf.GetInt("DBConnMaxLifetimeSec"))*time.Second,
	); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	authService := auth.NewService(
		conf.GetString("SpotifyClientID"),
		conf.GetString("SpotifyClientSecret"),
		conf.GetString("SpotifyRedirectURL"),
		repo,
		log,
	)

	client := spotify.New(repo, spotify.Options{
		PageSize:   conf.GetInt("LibraryPageSize"),
		RatePerSec: conf.GetFloat64("APIRatePerSecond"),
		Burst:      conf.GetInt("APIRateBurst"),
	}, log)

	device := spotify.NewPollingDevice(
		client,
		conf.GetString("DeviceName"),
		time.Duration(conf.GetInt("DevicePollMs"))*time.Millisecond,
		log,
	)

	stateStore := state.New()
	manager := playback.NewManager(device, client, repo, stateStore, log)

	scheduler := hydrate.NewScheduler(
		repo,
		pool,
		time.Duration(conf.GetInt("HydrationIntervalSec"))*time.Second,
		time.Duration(conf.GetInt("HydrationTimeoutSec"))*time.Second,
		log,
	)
	scheduler.Register(
		hydrate.NewTokenRefreshJob(repo, authService, log),
		hydrate.NewLibraryHydrationJob(client, repo, repo, log),
		hydrate.NewGenreEnrichmentJob(client, repo, conf.GetInt("LibraryPageSize"), log),
	)

	return &App{
		Config:    conf,
		Logger:    log,
		DB:        repo,
		Pool:      pool,
		State:     stateStore,
		Auth:      authService,
		Client:    client,
		Device:    device,
		Playback:  manager,
		Scheduler: scheduler,
		Build:     build,
	}, nil
}

// Start launches the hydration scheduler and the playback manager.
// Device connection failures are not fatal; the player runs detached
// until the device appears.
func (a *App) Start(ctx context.Context) error {
	a.schedulerDone = make(chan struct{})
	go func() {
		defer close(a.schedulerDone)
		if err := a.Scheduler.Run(ctx); err != nil {
			a.Logger.Error("scheduler stopped", "error", err)
		}
	}()

	if err := a.Playback.Start(ctx); err != nil {
		a.Logger.Warn("playback device unavailable at startup", "error", err)
	}

	a.Logger.Info("player started",
		"version", a.Build.BinVersion,
		"device", a.Config.GetString("DeviceName"))
	return nil
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Playback != nil {
		a.Playback.Stop()
	}

	if a.schedulerDone != nil {
		select {
		case <-a.schedulerDone:
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = fmt.Errorf("stop scheduler: %w", ctx.Err())
			}
		}
	}

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("shutdown worker pool: %w", err)
			}
		}
	}

	if a.State != nil {
		a.State.Close()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("failed to close database", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("close logger: %w", err)
			}
		}
	}

	return firstErr
}

func mapLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "info", "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
