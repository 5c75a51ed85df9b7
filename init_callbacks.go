// Package main — Session → WebSocket callback wire-up.
//
// Bu köprü neden burada (main package'da)?
// SessionStore services paketinde, Hub ws paketinde yaşıyor.
// İkisinin birbirine bağımlı olmasını istemiyoruz (Dependency Inversion).
// main package wire-up noktasıdır — tüm katmanları birbirine bağlar.
package main

import (
	"context"
	"log"

	"github.com/akinalp/kisalt/services"
	"github.com/akinalp/kisalt/ws"
)

// forwardSessionEvents, oturum olaylarını açık tüm dashboard sekmelerine iletir.
//
// login/refresh/logout bu process'ten, "sync" olayları ise Watch üzerinden
// başka bir process'ten (ör: CLI'dan logout) gelir. "expired" olayı
// sekmelerin login sayfasına dönmesini tetikler.
//
// ctx iptal edilene kadar bloklar; main'de `go` ile başlatılır.
func forwardSessionEvents(ctx context.Context, sessions *services.SessionStore, hub ws.EventPublisher) {
	events, cancel := sessions.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			hub.BroadcastToAll(ws.Event{
				Op: ws.OpSessionUpdate,
				Data: ws.SessionUpdateData{
					Authenticated: ev.Authenticated,
					Reason:        ev.Reason,
					At:            ev.At,
					Session:       sessions.Status(),
				},
			})
			log.Printf("[session] %s (authenticated=%t, tabs=%d)", ev.Reason, ev.Authenticated, hub.ConnectionCount())
		}
	}
}
