package qauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quatton/jobsched/pkg/db/models"
	"github.com/uptrace/bun"
)

// DBStore reads accounts from the auth.users table.
type DBStore struct {
	db *bun.DB
}

func NewDBStore(db *bun.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Lookup(ctx context.Context, username string) (*Account, error) {
	var u models.User
	err := s.db.NewSelect().
		Model(&u).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &Account{Username: u.Username, PasswordHash: u.PasswordHash, Disabled: u.Disabled}, nil
}

// Upsert creates the user or replaces its password.
func (s *DBStore) Upsert(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
	}
	_, err = s.db.NewInsert().
		Model(u).
		On("CONFLICT (username) DO UPDATE").
		Set("password_hash = EXCLUDED.password_hash").
		Set("disabled = false").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

// Disable blocks the user without deleting it.
func (s *DBStore) Disable(ctx context.Context, username string) error {
	res, err := s.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("disabled = true").
		Set("updated_at = current_timestamp").
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to disable user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownUser
	}
	return nil
}
