// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/kisalt/config"
	"github.com/akinalp/kisalt/handlers"
	"github.com/akinalp/kisalt/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Health    *handlers.HealthHandler
	Session   *handlers.SessionHandler
	Auth      *handlers.AuthHandler
	URL       *handlers.URLHandler
	Analytics *handlers.AnalyticsHandler
	Redirect  *handlers.RedirectHandler
	Contact   *handlers.ContactHandler
	WS        *ws.Handler
}

// initHandlers, tüm handler'ları service ve rate limiter dependency'leri ile oluşturur.
func initHandlers(svcs *Services, limiters *RateLimiters, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:    handlers.NewHealthHandler(svcs.Auth, hub),
		Session:   handlers.NewSessionHandler(svcs.Auth, svcs.Client),
		Auth:      handlers.NewAuthHandler(svcs.Auth, limiters.Login),
		URL:       handlers.NewURLHandler(svcs.URL),
		Analytics: handlers.NewAnalyticsHandler(svcs.Analytics),
		Redirect:  handlers.NewRedirectHandler(svcs.Redirect),
		Contact:   handlers.NewContactHandler(svcs.Contact, limiters.Contact),
		WS:        ws.NewHandler(hub, svcs.Sessions, cfg.Server.AllowedOrigins),
	}
}
