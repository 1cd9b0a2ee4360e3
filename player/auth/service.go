// Package auth owns the single cached session: the OAuth code exchange,
// explicit token refresh, and the validity rules the hydration jobs use.
package auth

import (
	"context"
	"fmt"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/spotless-music/spotless-go/player"
)

// Service performs the OAuth flows and persists the resulting session.
type Service struct {
	authenticator *spotifyauth.Authenticator
	conf          *oauth2.Config
	store         player.AuthStore
	logger        player.Logger
	now           func() time.Time
}

func NewService(clientID, clientSecret, redirectURL string, store player.AuthStore, logger player.Logger) *Service {
	scopes := []string{
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopeUserFollowRead,
		spotifyauth.ScopeUserReadPlaybackState,
		spotifyauth.ScopeUserModifyPlaybackState,
		spotifyauth.ScopeStreaming,
	}
	return &Service{
		authenticator: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURL),
			spotifyauth.WithScopes(scopes...),
		),
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		store:  store,
		logger: logger.With("module", "auth"),
		now:    time.Now,
	}
}

// AuthURL returns the provider consent page URL for the given state.
func (s *Service) AuthURL(state string) string {
	return s.authenticator.AuthURL(state)
}

// Exchange trades an authorization code for a session and caches it.
func (s *Service) Exchange(ctx context.Context, code string) (*player.AuthenticatedUser, error) {
	token, err := s.authenticator.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	user := sessionFromToken(token, "")
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("session established", "expires_at", time.UnixMilli(user.ExpirationTimestamp))
	return user, nil
}

// Refresh obtains a fresh access token for the cached session. The
// provider may omit a new refresh token, in which case the previous one
// is kept. On failure the cached session is left untouched.
func (s *Service) Refresh(ctx context.Context) (*player.AuthenticatedUser, error) {
	cached, err := s.store.CachedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if cached == nil {
		return nil, player.ErrNotAuthenticated
	}

	source := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cached.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	user := sessionFromToken(token, cached.RefreshToken)
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}

	s.logger.Info("session refreshed", "expires_at", time.UnixMilli(user.ExpirationTimestamp))
	return user, nil
}

// Logout drops the cached session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.DeleteUser(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}

func sessionFromToken(token *oauth2.Token, previousRefresh string) *player.AuthenticatedUser {
	refresh := token.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	return &player.AuthenticatedUser{
		AccessToken:         token.AccessToken,
		TokenType:           token.TokenType,
		RefreshToken:        refresh,
		ExpirationTimestamp: token.Expiry.UnixMilli(),
	}
}
