// Package ws, dashboard sekmelerine gerçek zamanlı oturum bildirimi sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını (tarayıcı sekmesini) temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Oturum değişir (login, refresh, logout, refresh hatası, CLI'dan sync)
// 2. SessionStore abonelere SessionEvent yayınlar
// 3. main paketindeki callback event'i Hub.BroadcastToAll ile iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
// 5. Açık tüm sekmeler oturum durumunu günceller (login sayfasına döner vb.)
package ws

import (
	"time"

	"github.com/akinalp/kisalt/models"
)

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü — "session_update", "heartbeat" vb.
// Data: Event'e özgü payload.
// Seq (sequence number): Her outbound broadcast'e verilen artan sayı.
// Sekme eksik event tespit ederse /api/session ile durumu yeniden çeker.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ─── Operation sabitleri ───

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir — "hâlâ bağlıyım" sinyali
)

// Server → Client operasyonları
const (
	OpReady         = "ready"          // Bağlantı kurulduğunda ilk gönderilen — mevcut oturum durumu
	OpHeartbeatAck  = "heartbeat_ack"  // Heartbeat'e yanıt
	OpSessionUpdate = "session_update" // Oturum açıldı, yenilendi veya kapandı
)

// ReadyData, bağlantı kurulunca gönderilen ilk payload.
type ReadyData struct {
	ConnectionID string               `json:"connection_id"`
	Session      models.SessionStatus `json:"session"`
}

// SessionUpdateData, session_update payload'ı.
// Reason "expired" ise sekme kullanıcıyı login sayfasına yönlendirir.
type SessionUpdateData struct {
	Authenticated bool                 `json:"authenticated"`
	Reason        models.SessionReason `json:"reason"`
	At            time.Time            `json:"at"`
	Session       models.SessionStatus `json:"session"`
}
