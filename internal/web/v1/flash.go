package v1

import (
	"encoding/gob"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	logicv1 "github.com/duynhne/backoffice/internal/logic/v1"
	"github.com/duynhne/backoffice/middleware"
)

// Notices travel in the session cookie across a redirect.
func init() {
	gob.Register(logicv1.Notice{})
}

// Flashes stores notices for the next page render.
type Flashes struct {
	store sessions.Store
}

func NewFlashes(store sessions.Store) *Flashes {
	return &Flashes{store: store}
}

// Add queues notices for the next request of this browser.
func (f *Flashes) Add(c *gin.Context, notices ...logicv1.Notice) {
	session, err := f.store.Get(c.Request, middleware.SessionName)
	if err != nil {
		// a stale or tampered cookie still yields a fresh session
		middleware.GetLoggerFromGinContext(c).Warn("Invalid session cookie", zap.Error(err))
	}
	for _, n := range notices {
		session.AddFlash(n)
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		middleware.GetLoggerFromGinContext(c).Error("Failed to save session", zap.Error(err))
	}
}

// Pop returns and clears the queued notices.
func (f *Flashes) Pop(c *gin.Context) []logicv1.Notice {
	session, err := f.store.Get(c.Request, middleware.SessionName)
	if err != nil {
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	var notices []logicv1.Notice
	for _, v := range flashes {
		if n, ok := v.(logicv1.Notice); ok {
			notices = append(notices, n)
		}
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		middleware.GetLoggerFromGinContext(c).Error("Failed to save session", zap.Error(err))
	}
	return notices
}
