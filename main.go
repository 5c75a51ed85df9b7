// Package main, kisalt'ın giriş noktasıdır: CLI komutları ve dashboard sunucusu.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Oturum deposunu aç (SQLite veya bellek), gerekirse şifrelemeyi kur
//  3. SessionStore'u diskten yükle, API client'ını ve service'leri oluştur
//  4. Komutu çalıştır — "serve" ise:
//     a. WebSocket Hub'ı başlat, oturum olaylarını Hub'a bağla
//     b. Handler'ları ve route'ları kur, CORS + dil middleware'ini sar
//     c. HTTP Server'ı başlat, sinyal gelince graceful shutdown
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/kisalt/config"
	"github.com/akinalp/kisalt/middleware"
	"github.com/akinalp/kisalt/pkg/i18n"
	"github.com/akinalp/kisalt/ws"
)

// app, bir komutun ihtiyaç duyduğu tüm dependency'ler.
type app struct {
	cfg   *config.Config
	repos *Repositories
	svcs  *Services
	loc   *i18n.Localizer
	out   io.Writer
}

// Close, açılan kaynakları ters sırada kapatır.
func (a *app) Close() {
	a.svcs.Close()
	a.repos.Close()
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	global := flag.NewFlagSet("kisalt", flag.ExitOnError)
	verbose := global.Bool("v", false, "log çıktısını göster")
	_ = global.Parse(os.Args[1:])

	name, args := "serve", global.Args()
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// CLI'da log satırları komut çıktısına karışmasın; sunucu her zaman loglar.
	if name != "serve" && !*verbose {
		log.SetOutput(io.Discard)
	}

	os.Exit(run(name, args))
}

// run, komutu çalıştırır ve process exit code'unu döner.
func run(name string, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("[main] failed to load config: %v", err)
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	loc := i18n.NewLocalizer(i18n.DetectLanguage(cfg.App.Language))

	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintln(os.Stderr, loc.TWithParams("cli.unknownCommand", map[string]string{"command": name}))
		printUsage(os.Stderr, loc)
		return 2
	}

	a, err := bootstrap(ctx, cfg, loc)
	if err != nil {
		log.Printf("[main] startup failed: %v", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.Close()

	if err := cmd.run(ctx, a, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		printError(os.Stderr, err, loc)
		return 1
	}
	return 0
}

// bootstrap, repository ve service katmanını kurar.
func bootstrap(ctx context.Context, cfg *config.Config, loc *i18n.Localizer) (*app, error) {
	repos, err := initRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svcs, err := initServices(ctx, repos, cfg)
	if err != nil {
		repos.Close()
		return nil, err
	}

	return &app{cfg: cfg, repos: repos, svcs: svcs, loc: loc, out: os.Stdout}, nil
}

// wrapHandler, mux'u dış middleware zinciriyle sarar:
// CORS → dil → origin kontrolü → route'lar.
func wrapHandler(mux http.Handler, cfg *config.Config) http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept-Language"},
		AllowCredentials: true,
		Debug:            false,
	})

	sameOrigin := middleware.SameOrigin(cfg.Server.AllowedOrigins)
	return corsHandler.Handler(middleware.Language(cfg.App.Language)(sameOrigin(mux)))
}

// serve, dashboard sunucusunu çalıştırır; ctx iptal edilince kapanır.
func serve(ctx context.Context, a *app) error {
	cfg := a.cfg
	log.Printf("[main] kisalt dashboard starting (api=%s, profile=%s)", cfg.API.BaseURL, cfg.Session.Profile)

	// ─── WebSocket Hub ───
	hub := ws.NewHub()
	go hub.Run()

	// Oturum olayları → sekmeler; başka process'lerin değişiklikleri → store
	go forwardSessionEvents(ctx, a.svcs.Sessions, hub)
	go a.svcs.Sessions.Watch(ctx, cfg.Session.SyncInterval)

	// ─── Handler + Route ───
	limiters := initRateLimiters()
	defer limiters.Close()

	h := initHandlers(a.svcs, limiters, hub, cfg)

	mux := http.NewServeMux()
	if err := initRoutes(mux, h, a.svcs.Auth, limiters.Redirect); err != nil {
		hub.Shutdown()
		return err
	}

	handler := wrapHandler(mux, cfg)

	// ─── HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		fmt.Fprintln(a.out, a.loc.TWithParams("cli.serving", map[string]string{"addr": cfg.Server.Addr()}))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		hub.Shutdown()
		return fmt.Errorf("server error: %w", err)
	}

	// ─── Graceful Shutdown ───
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantılarını kapat, sonra HTTP server'ı (5sn timeout).
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Println("[main] server stopped gracefully")
	return nil
}
