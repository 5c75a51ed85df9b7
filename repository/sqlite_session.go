package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/kisalt/database"
	"github.com/akinalp/kisalt/models"
	"github.com/akinalp/kisalt/pkg"
)

// ErrSessionLocked, şifreli kaydedilmiş oturum parola olmadan okunmaya çalışıldığında döner.
var ErrSessionLocked = errors.New("stored session is encrypted; SESSION_PASSPHRASE is required")

// sqliteSessionRepo, SessionRepository interface'inin SQLite implementasyonu.
// sealer nil ise token'lar düz metin saklanır.
type sqliteSessionRepo struct {
	db     database.TxQuerier
	sealer TokenSealer
	now    func() time.Time
}

// NewSQLiteSessionRepo, constructor. sealer opsiyoneldir.
func NewSQLiteSessionRepo(db database.TxQuerier, sealer TokenSealer) SessionRepository {
	return &sqliteSessionRepo{db: db, sealer: sealer, now: time.Now}
}

func (r *sqliteSessionRepo) Get(ctx context.Context, profile string) (*models.Session, error) {
	query := `
		SELECT profile, access_token, refresh_token, encrypted, version, updated_at
		FROM sessions WHERE profile = ?`

	var (
		s         models.Session
		encrypted bool
	)
	err := r.db.QueryRowContext(ctx, query, profile).Scan(
		&s.Profile, &s.Tokens.AccessToken, &s.Tokens.RefreshToken,
		&encrypted, &s.Version, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if encrypted {
		if r.sealer == nil {
			return nil, ErrSessionLocked
		}
		if s.Tokens.AccessToken, err = r.sealer.Open(s.Tokens.AccessToken); err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		if s.Tokens.RefreshToken, err = r.sealer.Open(s.Tokens.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
		}
	}

	return &s, nil
}

func (r *sqliteSessionRepo) Save(ctx context.Context, session *models.Session) error {
	access, refresh := session.Tokens.AccessToken, session.Tokens.RefreshToken
	encrypted := r.sealer != nil
	if encrypted {
		var err error
		if access, err = r.sealer.Seal(access); err != nil {
			return fmt.Errorf("failed to encrypt access token: %w", err)
		}
		if refresh, err = r.sealer.Seal(refresh); err != nil {
			return fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	// Tek statement upsert — version artışı atomik.
	query := `
		INSERT INTO sessions (profile, access_token, refresh_token, encrypted, version, updated_at)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(profile) DO UPDATE SET
			access_token  = excluded.access_token,
			refresh_token = excluded.refresh_token,
			encrypted     = excluded.encrypted,
			version       = sessions.version + 1,
			updated_at    = excluded.updated_at
		RETURNING version`

	now := r.now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		session.Profile, access, refresh, encrypted, now,
	).Scan(&session.Version)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	session.UpdatedAt = now
	return nil
}

func (r *sqliteSessionRepo) Delete(ctx context.Context, profile string) (bool, error) {
	return r.exec(ctx, `DELETE FROM sessions WHERE profile = ?`, profile)
}

func (r *sqliteSessionRepo) DeleteVersion(ctx context.Context, profile string, version int64) (bool, error) {
	return r.exec(ctx, `DELETE FROM sessions WHERE profile = ? AND version = ?`, profile, version)
}

func (r *sqliteSessionRepo) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected > 0, nil
}
