package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
	"github.com/akinalp/kisalt/repository"
)

// subscriberBuffer, her abonenin kanal kapasitesi. Dolu kanala gönderim atlanır.
const subscriberBuffer = 16

// SessionStore, tek bir profilin oturumunu tutan gözlemlenebilir depo.
//
// Token'lar bellekte tutulur ve her değişiklik SessionRepository'ye yazılır.
// Oturum açılınca, yenilenince veya kapanınca abonelere SessionEvent yayınlanır.
// Watch, aynı veritabanını kullanan başka bir process'in (CLI ↔ dashboard)
// yaptığı değişiklikleri de "sync" olayı olarak yayınlar.
//
// Tüm metodlar concurrent kullanım için güvenlidir.
type SessionStore struct {
	repo    repository.SessionRepository
	profile string
	now     func() time.Time

	mu      sync.RWMutex
	current *models.Session

	subsMu sync.Mutex
	subs   map[int]chan models.SessionEvent
	nextID int
}

// NewSessionStore, constructor. Load çağrılana kadar store boştur.
func NewSessionStore(repo repository.SessionRepository, profile string) *SessionStore {
	return &SessionStore{
		repo:    repo,
		profile: profile,
		now:     time.Now,
		subs:    make(map[int]chan models.SessionEvent),
	}
}

// Profile, store'un bağlı olduğu profil adı.
func (s *SessionStore) Profile() string {
	return s.profile
}

// Load, saklanmış oturumu repository'den belleğe alır. Oturum yoksa hata değildir.
func (s *SessionStore) Load(ctx context.Context) error {
	stored, err := s.repo.Get(ctx, s.profile)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}

	s.mu.Lock()
	s.current = stored
	s.mu.Unlock()
	return nil
}

// Tokens, mevcut token çiftini döner. Oturum yoksa ok=false.
func (s *SessionStore) Tokens() (models.Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return models.Tokens{}, false
	}
	return s.current.Tokens, true
}

// IsAuthenticated, access token varsa true.
func (s *SessionStore) IsAuthenticated() bool {
	tokens, ok := s.Tokens()
	return ok && tokens.AccessToken != ""
}

// Status, gösterim amaçlı oturum özeti. Claim'ler doğrulanmamış payload'dan okunur.
func (s *SessionStore) Status() models.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.SessionStatus{Profile: s.profile}
	if s.current == nil || s.current.Tokens.AccessToken == "" {
		return status
	}
	status.Authenticated = true

	if claims, err := s.current.Claims(); err == nil {
		status.Email = claims.Email
		status.Subject = claims.Subject
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			status.ExpiresAt = &exp
		}
	}
	return status
}

// Save, yeni token'ları kalıcı olarak yazar ve {authenticated, reason} yayınlar.
func (s *SessionStore) Save(ctx context.Context, tokens models.Tokens, reason models.SessionReason) error {
	s.mu.Lock()
	session := &models.Session{Profile: s.profile, Tokens: tokens}
	if err := s.repo.Save(ctx, session); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.current = session
	s.mu.Unlock()

	log.Printf("[session] saved (profile=%s, reason=%s, version=%d)", s.profile, reason, session.Version)
	s.publish(true, reason)
	return nil
}

// Clear, oturumu bellekten ve repository'den siler.
//
// Oturum zaten yoksa hiçbir şey yayınlanmaz ve cleared=false döner;
// böylece "oturum sona erdi" sinyali aynı oturum için tek kez üretilir.
// Repository hatası olsa bile bellekteki oturum silinir.
func (s *SessionStore) Clear(ctx context.Context, reason models.SessionReason) (bool, error) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	existed, err := s.repo.Delete(ctx, s.profile)
	s.mu.Unlock()

	cleared := had || existed
	if cleared {
		log.Printf("[session] cleared (profile=%s, reason=%s)", s.profile, reason)
		s.publish(false, reason)
	}
	if err != nil {
		return cleared, fmt.Errorf("failed to clear session: %w", err)
	}
	return cleared, nil
}

// Reload, repository'deki oturumu yeniden okur. Saklı oturum bellektekinden
// farklıysa (başka bir process yeniledi veya kapattı) belleğe alınır ve
// "sync" olayı yayınlanır. Güncel token'ları döner.
func (s *SessionStore) Reload(ctx context.Context) (models.Tokens, bool, error) {
	if err := s.sync(ctx); err != nil {
		return models.Tokens{}, false, fmt.Errorf("failed to reload session: %w", err)
	}
	tokens, ok := s.Tokens()
	return tokens, ok, nil
}

// Expire, refresh'i başarısız olan oturumu "expired" sebebiyle kapatır.
//
// Silme, bellekteki oturumun version'ına bağlıdır. Başka bir process oturumu
// bu arada yenilediyse satır silinmez; saklı oturum belleğe alınır ve
// adopted=true ile token'ları döner.
func (s *SessionStore) Expire(ctx context.Context) (tokens models.Tokens, adopted bool, err error) {
	s.mu.Lock()
	var version int64
	if s.current != nil {
		version = s.current.Version
	}

	existed, err := s.repo.DeleteVersion(ctx, s.profile, version)
	if err != nil {
		s.current = nil
		s.mu.Unlock()
		return models.Tokens{}, false, fmt.Errorf("failed to expire session: %w", err)
	}

	if !existed {
		stored, getErr := s.repo.Get(ctx, s.profile)
		if getErr == nil && stored.Tokens.AccessToken != "" && !sameSession(s.current, stored) {
			s.current = stored
			s.mu.Unlock()

			log.Printf("[session] kept newer session from another process (profile=%s, version=%d)", s.profile, stored.Version)
			s.publish(true, models.ReasonSync)
			return stored.Tokens, true, nil
		}
	}

	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if had || existed {
		log.Printf("[session] cleared (profile=%s, reason=%s)", s.profile, models.ReasonExpired)
		s.publish(false, models.ReasonExpired)
	}
	return models.Tokens{}, false, nil
}

// Subscribe, oturum olaylarını dinleyen bir kanal döner.
// cancel çağrıldığında kanal kapanır; birden fazla çağrı güvenlidir.
func (s *SessionStore) Subscribe() (<-chan models.SessionEvent, func()) {
	ch := make(chan models.SessionEvent, subscriberBuffer)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Watch, interval aralıklarla repository'yi yoklar; başka bir process'in
// yaptığı login/logout/refresh'i belleğe alıp "sync" olayı olarak yayınlar.
// ctx iptal edilene kadar bloklar.
func (s *SessionStore) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.sync(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[session] sync error: %v", err)
			}
		}
	}
}

// sync, tek bir yoklama adımı. Değişiklik yoksa sessizdir.
func (s *SessionStore) sync(ctx context.Context) error {
	stored, err := s.repo.Get(ctx, s.profile)
	if err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return err
	}

	s.mu.Lock()
	if sameSession(s.current, stored) {
		s.mu.Unlock()
		return nil
	}
	s.current = stored
	s.mu.Unlock()

	log.Printf("[session] synced external change (profile=%s, authenticated=%t)", s.profile, stored != nil)
	s.publish(stored != nil, models.ReasonSync)
	return nil
}

func sameSession(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version == b.Version && a.Tokens == b.Tokens
}

// publish, olayı tüm abonelere non-blocking gönderir.
// Yavaş bir abonenin dolu kanalı diğerlerini bekletmez.
func (s *SessionStore) publish(authenticated bool, reason models.SessionReason) {
	event := models.SessionEvent{Authenticated: authenticated, Reason: reason, At: s.now()}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- event:
		default:
			log.Printf("[session] subscriber %d is slow, event dropped (reason=%s)", id, reason)
		}
	}
}
