// Package main — HTTP route registration.
//
// initRoutes, tüm dashboard endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - session: oturum yoksa 401 (arayüz login sayfasına döner)
//   - limited: IP bazlı rate limit
package main

import (
	"io/fs"
	"net/http"

	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/pkg/ratelimit"
	"github.com/akinalp/kisalt/static"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE yazılır
// ("/api/urls/stats" → "/api/urls/{id}" öncesinde). Go 1.22+ mux en spesifik
// pattern'i seçer; sıra okunabilirlik içindir.
func initRoutes(mux *http.ServeMux, h *Handlers, sessions middleware.SessionChecker, redirectLimiter *ratelimit.WindowLimiter) error {
	// ─── Middleware ───
	sessionMw := middleware.NewSessionMiddleware(sessions)
	redirectMw := middleware.RateLimit(redirectLimiter)

	// ─── Middleware Chain Helpers ───
	session := func(handler http.HandlerFunc) http.Handler {
		return sessionMw.Require(handler)
	}
	limited := func(handler http.HandlerFunc) http.Handler {
		return redirectMw(handler)
	}

	// ─── Public ───
	mux.HandleFunc("GET /api/health", h.Health.Health)
	mux.HandleFunc("GET /api/session", h.Session.Status)
	mux.HandleFunc("POST /api/session/refresh", h.Session.Refresh)

	// Auth — login/register kendi limiter'ını kullanır (başarılı login sayacı sıfırlar)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)

	// Contact — oturum gerektirmez
	mux.HandleFunc("POST /api/contact", h.Contact.Send)

	// Redirect — oturum gerektirmez, remote API'ye Bearer gitmez
	mux.Handle("GET /r/{code}", limited(h.Redirect.Resolve))

	// ─── Session gerekli ───

	// URLs
	mux.Handle("GET /api/urls", session(h.URL.List))
	mux.Handle("POST /api/urls", session(h.URL.Create))
	mux.Handle("GET /api/urls/stats", session(h.URL.Stats))
	mux.Handle("GET /api/urls/detail/{code}", session(h.URL.Detail))
	mux.Handle("GET /api/urls/{id}", session(h.URL.Get))
	mux.Handle("PUT /api/urls/{id}", session(h.URL.Update))
	mux.Handle("DELETE /api/urls/{id}", session(h.URL.Delete))

	// Analytics
	mux.Handle("GET /api/analytics/top", session(h.Analytics.Top))
	mux.Handle("GET /api/analytics/urls/{code}", session(h.Analytics.URL))
	mux.Handle("GET /api/analytics/overview/{code}", session(h.Analytics.Overview))

	// WebSocket — oturum durumu ready event'iyle bildirilir, token istenmez
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)

	// ─── Dashboard sayfası ───
	page, err := fs.Sub(static.FrontendFS, "dist")
	if err != nil {
		return err
	}
	mux.Handle("GET /{$}", http.FileServerFS(page))

	return nil
}
