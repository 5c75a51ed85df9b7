// Package main — Repository katmanı başlatma.
//
// initRepositories, oturum deposunu oluşturur. DATABASE_PATH ":memory:" ise
// process'e özel bellek deposu kullanılır (testler, tek seferlik CLI çağrıları);
// aksi halde SQLite dosyası açılır ve migration'lar çalıştırılır.
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"

	"github.com/akinalp/kisalt/config"
	"github.com/akinalp/kisalt/database"
	"github.com/akinalp/kisalt/pkg/crypto"
	"github.com/akinalp/kisalt/repository"
)

// memoryPath, bellek deposunu seçen DATABASE_PATH değeri.
const memoryPath = ":memory:"

// saltKey, meta tablosunda Argon2 salt'ının tutulduğu anahtar.
const saltKey = "session_salt"

// Repositories, repository instance'larını tutan container struct.
type Repositories struct {
	Session repository.SessionRepository

	db *database.DB // nil → bellek deposu
}

// Close, varsa veritabanı bağlantısını kapatır.
func (r *Repositories) Close() {
	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		log.Printf("[main] failed to close database: %v", err)
	}
}

// initRepositories, config'e göre oturum deposunu kurar.
//
// SESSION_PASSPHRASE doluysa token'lar AES-256-GCM ile şifrelenir. Anahtar
// Argon2id ile parola + veritabanına özel salt'tan türetilir; salt ilk
// açılışta üretilip meta tablosuna yazılır, böylece CLI ve dashboard aynı
// anahtarı bulur.
func initRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	if cfg.Database.Path == memoryPath {
		log.Println("[main] using in-memory session store")
		return &Repositories{Session: repository.NewMemorySessionRepo()}, nil
	}

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	db, err := database.New(cfg.Database.Path, migrations)
	if err != nil {
		return nil, err
	}

	var sealer repository.TokenSealer
	if cfg.Session.Passphrase != "" {
		cipher, err := newTokenCipher(ctx, repository.NewSQLiteMetaRepo(db.Conn), cfg.Session.Passphrase)
		if err != nil {
			db.Close()
			return nil, err
		}
		sealer = cipher
		log.Println("[main] session tokens are encrypted at rest")
	}

	return &Repositories{
		Session: repository.NewSQLiteSessionRepo(db.Conn, sealer),
		db:      db,
	}, nil
}

func newTokenCipher(ctx context.Context, meta repository.MetaRepository, passphrase string) (*crypto.TokenCipher, error) {
	encoded, err := meta.GetOrCreate(ctx, saltKey, func() (string, error) {
		salt, err := crypto.NewSalt()
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(salt), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session salt: %w", err)
	}

	salt, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("corrupt session salt: %w", err)
	}

	return crypto.NewTokenCipher(crypto.DeriveKeyFromPassphrase(passphrase, salt))
}
