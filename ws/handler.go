package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/models"
)

// SessionSource, ready event'i için mevcut oturum durumunu veren interface.
//
// services.SessionStore'u doğrudan import etmek yerine küçük bir interface:
// ws paketi sadece Status()'a ihtiyaç duyar (Interface Segregation).
type SessionSource interface {
	Status() models.SessionStatus
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub      *Hub
	sessions SessionSource
	upgrader websocket.Upgrader
}

// NewHandler, yeni bir WebSocket handler oluşturur.
//
// allowedOrigins CORS ile aynı listedir. Origin header'ı olmayan istekler
// (tarayıcı dışı araçlar) ve aynı host'tan gelenler her zaman kabul edilir.
func NewHandler(hub *Hub, sessions SessionSource, allowedOrigins []string) *Handler {
	h := &Handler{hub: hub, sessions: sessions}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.OriginAllowed(r, allowedOrigins)
		},
	}
	return h
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Dashboard yerel ve tek kullanıcılı olduğu için token istenmez; oturum
// process genelidir ve ready event'iyle bildirilir.
//
// Flow:
// 1. HTTP → WebSocket upgrade
// 2. Client oluştur, ready event'ini kuyruğa koy
// 3. Hub'a kaydet
// 4. ReadPump ve WritePump goroutine'lerini başlat
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, sendBufferSize),
	}

	// ready, client Hub'a girmeden önce buffer'a yazılır; böylece ilk event
	// her zaman ready olur ve araya bir broadcast giremez.
	ready, err := json.Marshal(Event{
		Op:   OpReady,
		Data: ReadyData{ConnectionID: client.id, Session: h.sessions.Status()},
	})
	if err != nil {
		log.Printf("[ws] failed to marshal ready event: %v", err)
		conn.Close()
		return
	}
	client.send <- ready

	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump() // bağlantı kapanana kadar bloklar
}
