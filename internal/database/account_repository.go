package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"slotwise/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// AccountRepository persists Google accounts and their calendar tokens.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a repository backed by the given database.
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get returns the account with the given internal ID.
func (r *AccountRepository) Get(ctx context.Context, id string) (models.Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

// GetByGoogleID returns the account with the given Google subject ID.
func (r *AccountRepository) GetByGoogleID(ctx context.Context, googleID string) (models.Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE google_id = ?`, googleID)
}

// Insert stores a new account.
func (r *AccountRepository) Insert(ctx context.Context, acct models.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, google_id, email, name, picture, access_token, refresh_token, token_expiry, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.GoogleID, acct.Email, acct.Name, acct.Picture,
		acct.AccessToken, acct.RefreshToken, acct.TokenExpiry, acct.CreatedAt, acct.LastLogin,
	)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an existing account.
func (r *AccountRepository) Update(ctx context.Context, acct models.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, name = ?, picture = ?, access_token = ?, refresh_token = ?, token_expiry = ?, last_login = ?
		WHERE id = ?`,
		acct.Email, acct.Name, acct.Picture, acct.AccessToken, acct.RefreshToken,
		acct.TokenExpiry, acct.LastLogin, acct.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const accountColumns = `id, google_id, email, name, picture, access_token, refresh_token, token_expiry, created_at, last_login`

func (r *AccountRepository) scanOne(ctx context.Context, query string, args ...any) (models.Account, error) {
	var (
		acct   models.Account
		expiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&acct.ID, &acct.GoogleID, &acct.Email, &acct.Name, &acct.Picture,
		&acct.AccessToken, &acct.RefreshToken, &expiry, &acct.CreatedAt, &acct.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("reading account: %w", err)
	}
	if expiry.Valid {
		acct.TokenExpiry = expiry.Time.UTC()
	}
	acct.CreatedAt = acct.CreatedAt.UTC()
	acct.LastLogin = acct.LastLogin.UTC()
	return acct, nil
}

// Touch updates last_login for the given account.
func (r *AccountRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("touching account: %w", err)
	}
	return nil
}
