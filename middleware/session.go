package middleware

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/duynhne/backoffice/config"
)

// SessionName is the cookie carrying flash notifications between a mutation and
// the page it redirects to.
const SessionName = "backoffice-session"

var randRead = rand.Read

// NewSessionStore builds the cookie store for flash notifications.
// Without SESSION_SECRET a random key is generated, so flashes do not survive a restart.
func NewSessionStore(cfg config.SessionConfig, logger *zap.Logger) (*sessions.CookieStore, error) {
	key := []byte(cfg.Secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := randRead(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		logger.Warn("SESSION_SECRET not set, using an ephemeral session key")
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}
