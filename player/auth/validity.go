package auth

import (
	"time"

	"github.com/spotless-music/spotless-go/player"
)

// RefreshThreshold is how close to expiry a token is still treated as
// usable before a refresh is forced.
const RefreshThreshold = 3 * time.Minute

// NeedsRefresh reports whether the session's access token expires within
// the refresh threshold of now. The boundary itself counts: a token
// exactly at the threshold already needs a refresh. Expired tokens
// always need one.
func NeedsRefresh(user *player.AuthenticatedUser, now time.Time) bool {
	if user == nil {
		return false
	}
	return now.UnixMilli() >= user.ExpirationTimestamp-RefreshThreshold.Milliseconds()
}

// IsValid reports whether the session can be used as-is, without a
// refresh, at the given instant.
func IsValid(user *player.AuthenticatedUser, now time.Time) bool {
	return user != nil && !NeedsRefresh(user, now)
}
