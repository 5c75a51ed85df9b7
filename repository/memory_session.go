package repository

import (
	"context"
	"sync"
	"time"

	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// memorySessionRepo, process ömrüyle sınırlı SessionRepository.
// Testlerde ve DATABASE_PATH=":memory:" ile açılan geçici oturumlarda kullanılır.
type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewMemorySessionRepo, constructor.
func NewMemorySessionRepo() SessionRepository {
	return &memorySessionRepo{sessions: make(map[string]models.Session), now: time.Now}
}

func (r *memorySessionRepo) Get(_ context.Context, profile string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[profile]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	return &s, nil
}

func (r *memorySessionRepo) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.Version = r.sessions[session.Profile].Version + 1
	session.UpdatedAt = r.now().UTC()
	r.sessions[session.Profile] = *session
	return nil
}

func (r *memorySessionRepo) Delete(_ context.Context, profile string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[profile]
	delete(r.sessions, profile)
	return ok, nil
}

func (r *memorySessionRepo) DeleteVersion(_ context.Context, profile string, version int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[profile]
	if !ok || s.Version != version {
		return false, nil
	}
	delete(r.sessions, profile)
	return true, nil
}
