// Package ratelimit — dashboard sunucusu için IP bazlı istek sınırlama.
//
// İki limiter var:
//   - WindowLimiter: sabit pencere içinde N istek (login/register brute-force koruması).
//   - CooldownLimiter: pencere aşılınca ayrı bir ceza süresi uygular (iletişim formu spam'i).
//
// Her ikisi de in-memory çalışır; dashboard tek process olarak açılır.
// Bu paket proje içi hiçbir pakete bağımlı değildir (leaf dependency),
// handlers ve middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket, bir anahtar (IP) için sayaç ve pencere başlangıcı.
// cooldownUntil sadece CooldownLimiter tarafından kullanılır.
type bucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time
}

// store, iki limiter'ın ortak map + temizlik altyapısı.
type store struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	now         func() time.Time
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

func newStore() store {
	return store{
		buckets:     make(map[string]*bucket),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
}

func (s *store) cleanupLoop(interval time.Duration, expired func(b *bucket, now time.Time) bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(expired)
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *store) sweep(expired func(b *bucket, now time.Time) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, b := range s.buckets {
		if expired(b, now) {
			delete(s.buckets, key)
		}
	}
}

// Close, temizlik goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (s *store) Close() {
	s.closeOnce.Do(func() { close(s.stopCleanup) })
}

// ─── WindowLimiter ───

// WindowLimiter, pencere başına maxAttempts istek izni verir.
//
//	limiter := ratelimit.NewWindowLimiter(5, 2*time.Minute)
//	if !limiter.Allow(ip) { return 429 }
//	// Başarılı login'de:
//	limiter.Reset(ip)
type WindowLimiter struct {
	store
	maxAttempts int
	window      time.Duration
}

// NewWindowLimiter, limiter oluşturur ve dakikada bir çalışan temizliği başlatır.
func NewWindowLimiter(maxAttempts int, window time.Duration) *WindowLimiter {
	rl := &WindowLimiter{
		store:       newStore(),
		maxAttempts: maxAttempts,
		window:      window,
	}
	go rl.cleanupLoop(time.Minute, rl.expired)
	return rl
}

// Allow, istek kabul edilirse true döner. Her çağrı sayacı artırır.
func (rl *WindowLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists || now.Sub(b.windowStart) > rl.window {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// Reset, anahtarın sayacını siler (başarılı login sonrası).
func (rl *WindowLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// RetryAfterSeconds, pencerenin bitmesine kalan süre (Retry-After header'ı için).
func (rl *WindowLimiter) RetryAfterSeconds(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		return 0
	}
	return ceilSeconds(b.windowStart.Add(rl.window).Sub(rl.now()))
}

func (rl *WindowLimiter) expired(b *bucket, now time.Time) bool {
	return now.Sub(b.windowStart) > rl.window
}

// ─── CooldownLimiter ───

// CooldownLimiter, pencere içinde maxHits aşılınca anahtarı cooldown süresince
// tamamen bloke eder. Cooldown bitince sayaç sıfırdan başlar.
//
//	limiter := ratelimit.NewCooldownLimiter(3, time.Minute, 10*time.Minute)
type CooldownLimiter struct {
	store
	maxHits  int
	window   time.Duration
	cooldown time.Duration
}

// NewCooldownLimiter, limiter oluşturur ve 30 saniyede bir çalışan temizliği başlatır.
func NewCooldownLimiter(maxHits int, window, cooldown time.Duration) *CooldownLimiter {
	rl := &CooldownLimiter{
		store:    newStore(),
		maxHits:  maxHits,
		window:   window,
		cooldown: cooldown,
	}
	go rl.cleanupLoop(30*time.Second, rl.expired)
	return rl
}

// Allow, istek kabul edilirse true döner.
func (rl *CooldownLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			return false
		}
		*b = bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxHits {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// CooldownSeconds, kalan ceza süresi. Cooldown yoksa 0.
func (rl *CooldownLimiter) CooldownSeconds(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}
	return ceilSeconds(b.cooldownUntil.Sub(rl.now()))
}

func (rl *CooldownLimiter) expired(b *bucket, now time.Time) bool {
	windowExpired := now.Sub(b.windowStart) > rl.window
	cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)
	return windowExpired && cooldownExpired
}

// ─── Helpers ───

// ceilSeconds, client tam süreyi beklesin diye +1 yuvarlar. Negatif süre → 0.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds()) + 1
}

// ExtractIP, request'ten client IP'sini çıkarır.
// Öncelik: X-Forwarded-For (ilk değer) → X-Real-IP → RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
