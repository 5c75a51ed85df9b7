package handlers

import (
	"context"
	"net/http"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// SessionReader, oturum özetini veren interface (services.AuthService karşılar).
type SessionReader interface {
	Status() models.SessionStatus
}

// Refresher, oturumu hemen yenileyen interface (apiclient.Client karşılar).
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SessionHandler, dashboard'un oturum durumu endpoint'leri.
type SessionHandler struct {
	sessions  SessionReader
	refresher Refresher
}

// NewSessionHandler, constructor.
func NewSessionHandler(sessions SessionReader, refresher Refresher) *SessionHandler {
	return &SessionHandler{sessions: sessions, refresher: refresher}
}

// Status godoc
// GET /api/session
// Oturum yoksa da 200 döner; authenticated=false.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.sessions.Status())
}

// Refresh godoc
// POST /api/session/refresh
//
// Otomatik refresh ile aynı kilitli yolu kullanır; sürmekte olan bir
// refresh varsa ona katılır. Başarısızlıkta oturum kapanır ve 401 döner.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.refresher.Refresh(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	pkg.JSON(w, http.StatusOK, h.sessions.Status())
}
