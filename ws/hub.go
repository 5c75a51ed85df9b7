package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
)

// EventPublisher, oturum değişikliklerini sekmelere iletmek için kullanılan interface.
//
// Dependency Inversion: callback'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır; testte sahte publisher kullanılabilir.
type EventPublisher interface {
	BroadcastToAll(event Event)
	ConnectionCount() int
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır (Observer pattern).
//
// Hub.Run() goroutine'i register/unregister channel'larından `select` ile okur:
// - register channel'dan yeni client gelirse → clients set'ine ekle
// - unregister channel'dan client gelirse → set'ten çıkar, send'i kapat
// - done kapanırsa → loop sonlanır
type Hub struct {
	// clients: açık sekmeler. Dashboard tek kullanıcılı olduğu için
	// kullanıcı bazlı gruplama yok; her bağlantı bir sekmedir.
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once

	// seq: Her broadcast'e verilen artan sayaç.
	seq atomic.Int64
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run, Hub'ın ana event loop'udur. main'de `go hub.Run()` ile başlatılır,
// Shutdown çağrılınca döner.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-h.done:
			return
		}
	}
}

// Register, client'ı Hub'a ekler. Hub kapanmışsa false döner.
func (h *Hub) Register(c *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister, client'ı Hub'dan çıkarır. Hub kapanmışsa bloklamaz.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	log.Printf("[ws] client connected: id=%s (open tabs: %d)", client.id, len(h.clients))
}

// removeClient, client'ı çıkarır ve send channel'ını kapatır.
// Aynı client iki kez gelirse ikincisi yok sayılır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	log.Printf("[ws] client disconnected: id=%s (remaining: %d)", client.id, len(h.clients))
}

// BroadcastToAll, tüm bağlı sekmelere event gönderir.
// Buffer'ı dolu (yavaş) client'lar Hub'dan çıkarılır.
func (h *Hub) BroadcastToAll(event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			go h.Unregister(client)
		}
	}
}

// ConnectionCount, açık bağlantı sayısı (health endpoint'i için).
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown, loop'u durdurur ve tüm client bağlantılarını kapatır (graceful shutdown).
// Birden fazla çağrı güvenlidir.
func (h *Hub) Shutdown() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()

		for client := range h.clients {
			close(client.send)
		}
		h.clients = make(map[*Client]bool)
		log.Println("[ws] hub shut down, all connections closed")
	})
}
