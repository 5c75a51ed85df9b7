package repository

import (
	"context"

	"github.com/akinalp/kisalt/models"
)

// SessionRepository, profil başına saklanan oturum için interface.
type SessionRepository interface {
	// Get, profilin oturumunu döner. Yoksa pkg.ErrNotFound.
	Get(ctx context.Context, profile string) (*models.Session, error)
	// Save, oturumu upsert eder; session.Version ve UpdatedAt güncellenir.
	Save(ctx context.Context, session *models.Session) error
	// Delete, oturumu siler. Satır varsa true döner.
	Delete(ctx context.Context, profile string) (bool, error)
	// DeleteVersion, oturumu sadece saklı version eşleşiyorsa siler.
	// Başka bir process oturumu yenilediyse satır korunur ve false döner.
	DeleteVersion(ctx context.Context, profile string, version int64) (bool, error)
}

// MetaRepository, küçük anahtar/değer ayarları için interface.
type MetaRepository interface {
	// GetOrCreate, key varsa mevcut değeri, yoksa create() sonucunu yazıp döner.
	GetOrCreate(ctx context.Context, key string, create func() (string, error)) (string, error)
}

// TokenSealer, token'ları diske yazmadan önce şifreleyen bileşen (pkg/crypto.TokenCipher).
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(encoded string) (string, error)
}
