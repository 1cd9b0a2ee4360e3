package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestSessionFromToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token := &oauth2.Token{
		AccessToken:  "access-new",
		TokenType:    "Bearer",
		RefreshToken: "refresh-new",
		Expiry:       expiry,
	}

	user := sessionFromToken(token, "refresh-old")

	assert.Equal(t, "access-new", user.AccessToken)
	assert.Equal(t, "Bearer", user.TokenType)
	assert.Equal(t, "refresh-new", user.RefreshToken)
	assert.Equal(t, expiry.UnixMilli(), user.ExpirationTimestamp)
}

func TestSessionFromTokenKeepsPreviousRefreshToken(t *testing.T) {
	token := &oauth2.Token{
		AccessToken: "access-new",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}

	user := sessionFromToken(token, "refresh-old")

	assert.Equal(t, "refresh-old", user.RefreshToken)
}
