package handlers

import (
	"net/http"
	"time"

	"github.com/akinalp/kisalt/pkg"
)

// ConnectionCounter, açık dashboard sekmesi sayısı (ws.Hub).
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthHandler, liveness endpoint'i.
type HealthHandler struct {
	sessions SessionReader
	conns    ConnectionCounter
	started  time.Time
}

// NewHealthHandler, constructor.
func NewHealthHandler(sessions SessionReader, conns ConnectionCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions, conns: conns, started: time.Now()}
}

// HealthResponse, /api/health yanıtı.
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	Connections   int    `json:"connections"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// Health godoc
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Authenticated: h.sessions.Status().Authenticated,
		Connections:   h.conns.ConnectionCount(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}
