// Package spotify implements the remote API surface: the library and
// player endpoints plus the polling playback device.
package spotify

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/spotless-music/spotless-go/player"
)

// Client provides resilient calls against the remote API. Access tokens
// come from the cached session; the background refresh job keeps them
// fresh, so no transparent refresh happens here.
type Client struct {
	api        *spotify.Client
	retry      *retryablehttp.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	pageSize   int
	maxRetries int
	minBackoff time.Duration
	maxBackoff time.Duration
	logger     player.Logger
}

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	PageSize   int
	RatePerSec float64
	Burst      int
}

// New creates a client reading tokens from the given session store.
func New(store player.AuthStore, opts Options, logger player.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	settings := gobreaker.Settings{
		Name:        "spotify-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: &storeTokenSource{store: store},
			Base:   retryClient.StandardClient().Transport,
		},
		Timeout: 30 * time.Second,
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}
	perSec := opts.RatePerSec
	if perSec <= 0 {
		perSec = 4
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 8
	}

	return &Client{
		api:        spotify.New(httpClient),
		retry:      retryClient,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		limiter:    rate.NewLimiter(rate.Limit(perSec), burst),
		pageSize:   pageSize,
		maxRetries: retryClient.RetryMax,
		minBackoff: retryClient.RetryWaitMin,
		maxBackoff: retryClient.RetryWaitMax,
		logger:     logger.With("module", "spotify"),
	}
}

// storeTokenSource serves the cached session's access token as-is.
type storeTokenSource struct {
	store player.AuthStore
}

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	user, err := s.store.CachedUser(context.Background())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, player.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: user.AccessToken,
		TokenType:   user.TokenType,
		// Expiry is left zero so the transport never tries to refresh;
		// the token refresh job owns that.
	}, nil
}

func (c *Client) execute(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.withRetry(ctx, fn)
	})
	return err
}

func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		wait := c.retry.Backoff(c.minBackoff, c.maxBackoff, attempt, nil)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if lastErr == nil {
		lastErr = errors.New("spotify: retry failed")
	}
	return lastErr
}
