// Package main — Service katmanı başlatma.
//
// initServices, oturum deposunu, API client'ını ve tüm service'leri oluşturur.
// Her service ihtiyaç duyduğu dependency'leri constructor injection ile alır.
//
// Sıralama:
// 1. SessionStore → Client'tan ÖNCE (Client token'ları store'dan okur)
// 2. RedirectService → URLService'ten ÖNCE (URL değişince cache'i düşürülür)
// 3. URLService → AnalyticsService'ten ÖNCE (Overview URL detayını kullanır)
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/akinalp/kisalt/apiclient"
	"github.com/akinalp/kisalt/config"
	"github.com/akinalp/kisalt/pkg/email"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/pkg/ratelimit"
	"github.com/akinalp/kisalt/services"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Sessions  *services.SessionStore
	Client    *apiclient.Client
	Auth      services.AuthService
	URL       services.URLService
	Analytics services.AnalyticsService
	Redirect  services.RedirectService
	Contact   services.ContactService
}

// Close, arka plan goroutine'i olan service'leri durdurur.
func (s *Services) Close() {
	s.Redirect.Close()
}

// RateLimiters, dashboard'un rate limiter instance'larını tutan container.
type RateLimiters struct {
	Login    *ratelimit.WindowLimiter
	Redirect *ratelimit.WindowLimiter
	Contact  *ratelimit.CooldownLimiter
}

// Close, limiter'ların temizlik goroutine'lerini durdurur.
func (l *RateLimiters) Close() {
	l.Login.Close()
	l.Redirect.Close()
	l.Contact.Close()
}

// initServices, oturumu diskten yükler ve service'leri kurar.
func initServices(ctx context.Context, repos *Repositories, cfg *config.Config) (*Services, error) {
	sessions := services.NewSessionStore(repos.Session, cfg.Session.Profile)
	if err := sessions.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	client := apiclient.New(sessions, apiclient.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		InsecureTLS: cfg.API.InsecureTLS,
		Localizer:   i18n.NewLocalizer(cfg.App.Language),
	})

	// ─── Contact (opsiyonel) ───
	var sender email.ContactSender
	if cfg.Contact.Enabled() {
		sender = email.NewResendSender(cfg.Contact.ResendAPIKey, cfg.Contact.FromEmail, cfg.Contact.ToEmail)
		log.Printf("[main] contact form enabled (to=%s)", cfg.Contact.ToEmail)
	} else {
		log.Println("[main] contact form disabled (RESEND_API_KEY, CONTACT_FROM_EMAIL or CONTACT_TO_EMAIL not set)")
	}

	redirectService := services.NewRedirectService(client, cfg.Redirect.CacheTTL)
	urlService := services.NewURLService(client, redirectService)
	analyticsService := services.NewAnalyticsService(client, urlService, cfg.Analytics.Location, cfg.Analytics.TopCount)

	return &Services{
		Sessions:  sessions,
		Client:    client,
		Auth:      services.NewAuthService(client, sessions),
		URL:       urlService,
		Analytics: analyticsService,
		Redirect:  redirectService,
		Contact:   services.NewContactService(sender),
	}, nil
}

// initRateLimiters, dashboard'un IP bazlı limiter'larını oluşturur.
//
//   - Login/register: 5 deneme / 2 dakika
//   - Redirect: 120 çözümleme / dakika
//   - Contact: 3 mesaj / 10 dakika, aşılırsa 30 dakika ceza
func initRateLimiters() *RateLimiters {
	return &RateLimiters{
		Login:    ratelimit.NewWindowLimiter(5, 2*time.Minute),
		Redirect: ratelimit.NewWindowLimiter(120, time.Minute),
		Contact:  ratelimit.NewCooldownLimiter(3, 10*time.Minute, 30*time.Minute),
	}
}
