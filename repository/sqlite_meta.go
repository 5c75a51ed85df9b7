package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/kisalt/database"
)

// sqliteMetaRepo, MetaRepository interface'inin SQLite implementasyonu.
type sqliteMetaRepo struct {
	db *sql.DB
}

// NewSQLiteMetaRepo, constructor. Transaction açabilmek için *sql.DB alır.
func NewSQLiteMetaRepo(db *sql.DB) MetaRepository {
	return &sqliteMetaRepo{db: db}
}

// GetOrCreate, oku-yoksa-yaz işlemini tek transaction içinde yapar.
// Başka bir process aynı anda yazdıysa (UNIQUE ihlali) onun değeri okunur.
func (r *sqliteMetaRepo) GetOrCreate(ctx context.Context, key string, create func() (string, error)) (string, error) {
	var value string

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to read meta %q: %w", key, err)
		}

		if value, err = create(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to write meta %q: %w", key, err)
		}
		return nil
	})
	if err != nil && isUniqueViolation(err) {
		if err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value); err != nil {
			return "", fmt.Errorf("failed to read meta %q: %w", key, err)
		}
		return value, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
