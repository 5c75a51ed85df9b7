// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Hem CLI hem dashboard sunucusu aynı Config'i kullanır; her alt bölüm
// tek bir concern'ü temsil eder.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	API       APIConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	App       AppConfig
	Analytics AnalyticsConfig
	Redirect  RedirectConfig
	Contact   ContactConfig
}

// APIConfig, remote URL kısaltma API'si ayarları.
type APIConfig struct {
	BaseURL     string        // ör: https://localhost:7093/api/v1
	Timeout     time.Duration // http.Client timeout
	InsecureTLS bool          // geliştirme sertifikası için TLS doğrulamasını kapatır
}

// ServerConfig, dashboard HTTP server ayarları.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS
}

// DatabaseConfig, session deposu SQLite ayarları.
type DatabaseConfig struct {
	Path string // ör: ./data/kisalt.db
}

// SessionConfig, oturum saklama ve senkronizasyon ayarları.
type SessionConfig struct {
	Profile      string        // sessions tablosundaki satır anahtarı
	Passphrase   string        // boş değilse token'lar diskte şifrelenir
	SyncInterval time.Duration // diğer process'lerin yaptığı değişiklikleri yoklama aralığı
}

// AppConfig, genel uygulama ayarları.
type AppConfig struct {
	Language string // varsayılan dil (tr/en)
}

// AnalyticsConfig, analitik sorgu ayarları.
type AnalyticsConfig struct {
	Location *time.Location // gün sınırlarının hesaplandığı sabit zaman dilimi
	TopCount int
}

// RedirectConfig, kısa kod çözümleme ayarları.
type RedirectConfig struct {
	CacheTTL time.Duration
}

// ContactConfig, iletişim formu (Resend) ayarları.
type ContactConfig struct {
	ResendAPIKey string
	FromEmail    string
	ToEmail      string
}

// Enabled, iletişim formunun gönderim yapabilecek kadar yapılandırılıp yapılandırılmadığını döner.
func (c ContactConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != "" && c.ToEmail != ""
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyası yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	baseURL := strings.TrimRight(getEnv("API_BASE_URL", "https://localhost:7093/api/v1"), "/")
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API_BASE_URL: %q", baseURL)
	}

	timeout, err := getInt("API_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	insecure, err := strconv.ParseBool(getEnv("API_INSECURE_TLS", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_INSECURE_TLS: %w", err)
	}

	port, err := getInt("SERVER_PORT", 3000)
	if err != nil {
		return nil, err
	}

	syncSeconds, err := getInt("SESSION_SYNC_SECONDS", 2)
	if err != nil {
		return nil, err
	}

	offset, err := getInt("ANALYTICS_UTC_OFFSET_HOURS", 3)
	if err != nil {
		return nil, err
	}
	if offset < -12 || offset > 14 {
		return nil, fmt.Errorf("invalid ANALYTICS_UTC_OFFSET_HOURS: %d", offset)
	}

	topCount, err := getInt("ANALYTICS_TOP_COUNT", 10)
	if err != nil {
		return nil, err
	}

	cacheSeconds, err := getInt("REDIRECT_CACHE_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:     baseURL,
			Timeout:     time.Duration(timeout) * time.Second,
			InsecureTLS: insecure,
		},
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "127.0.0.1"),
			Port:           port,
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/kisalt.db"),
		},
		Session: SessionConfig{
			Profile:      getEnv("SESSION_PROFILE", "default"),
			Passphrase:   getEnv("SESSION_PASSPHRASE", ""),
			SyncInterval: time.Duration(syncSeconds) * time.Second,
		},
		App: AppConfig{
			Language: getEnv("APP_LANGUAGE", "tr"),
		},
		Analytics: AnalyticsConfig{
			Location: FixedZone(offset),
			TopCount: topCount,
		},
		Redirect: RedirectConfig{
			CacheTTL: time.Duration(cacheSeconds) * time.Second,
		},
		Contact: ContactConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("CONTACT_FROM_EMAIL", ""),
			ToEmail:      getEnv("CONTACT_TO_EMAIL", ""),
		},
	}

	return cfg, nil
}

// Addr, dashboard server'ın dinleyeceği adresi döner (ör: "127.0.0.1:3000").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FixedZone, UTC+offset saat dilimi döner (ör: 3 → "UTC+3").
func FixedZone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*3600)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
