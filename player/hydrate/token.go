package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spotless-music/spotless-go/player"
	"github.com/spotless-music/spotless-go/player/auth"
)

// Refresher obtains a fresh access token for the cached session.
type Refresher interface {
	Refresh(ctx context.Context) (*player.AuthenticatedUser, error)
}

// TokenRefreshJob refreshes the access token shortly before it expires.
// A failed refresh keeps the previous session so the user stays logged
// in; the next tick tries again.
type TokenRefreshJob struct {
	store     player.AuthStore
	refresher Refresher
	logger    player.Logger
	now       func() time.Time
}

func NewTokenRefreshJob(store player.AuthStore, refresher Refresher, logger player.Logger) *TokenRefreshJob {
	return &TokenRefreshJob{
		store:     store,
		refresher: refresher,
		logger:    logger.With("job", "token-refresh"),
		now:       time.Now,
	}
}

func (j *TokenRefreshJob) Name() string { return "token-refresh" }

// Interval is short relative to the refresh threshold so the window
// before expiry is never missed.
func (j *TokenRefreshJob) Interval() time.Duration { return time.Minute }

func (j *TokenRefreshJob) Run(ctx context.Context) error {
	user, err := j.store.CachedUser(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if user == nil {
		return nil
	}
	if !auth.NeedsRefresh(user, j.now()) {
		return nil
	}

	if _, err := j.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	j.logger.Info("access token refreshed")
	return nil
}
