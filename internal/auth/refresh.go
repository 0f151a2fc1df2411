package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshBuffer refreshes tokens this long before they expire
const refreshBuffer = 60 * time.Second

// TokenSaver persists refreshed tokens
type TokenSaver interface {
	UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error
}

// TokenSource refreshes the Strava token when it is about to expire and
// writes every new token back through the saver.
type TokenSource struct {
	config *oauth2.Config
	saver  TokenSaver
	log    *slog.Logger

	mu    sync.Mutex
	token *oauth2.Token
	now   func() time.Time
}

// NewTokenSource creates a TokenSource. A nil saver keeps tokens in memory only.
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, saver TokenSaver, log *slog.Logger) *TokenSource {
	if log == nil {
		log = slog.Default()
	}
	return &TokenSource{
		config: cfg,
		token:  token,
		saver:  saver,
		log:    log,
		now:    time.Now,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.expiringLocked() {
		return ts.token, nil
	}

	ctx := context.Background()
	// force a refresh; the oauth2 package would otherwise reuse the token
	// until its own, shorter expiry delta
	stale := *ts.token
	stale.Expiry = ts.now().Add(-time.Second)
	newToken, err := ts.config.TokenSource(ctx, &stale).Token()
	if err != nil {
		ts.log.Warn("token refresh failed", "err", err)
		return nil, err
	}

	if ts.saver != nil {
		if err := ts.saver.UpdateTokens(ctx, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry); err != nil {
			return nil, err
		}
	}
	ts.log.Debug("token refreshed", "expires", newToken.Expiry)

	ts.token = newToken
	return newToken, nil
}

// IsExpired reports whether the current token is expired or within the refresh buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.expiringLocked()
}

func (ts *TokenSource) expiringLocked() bool {
	return ts.token.Expiry.Sub(ts.now()) <= refreshBuffer
}
