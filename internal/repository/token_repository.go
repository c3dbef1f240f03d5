package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-manager/internal/model"
)

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

// TokenRepo keeps hashed refresh tokens in `refresh_tokens`.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store records a new refresh token hash for userID.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// Lookup loads the row for tokenHash.  Revoked and expired rows are
// still returned; use Valid to check them.
func (r *TokenRepo) Lookup(ctx context.Context, tokenHash string) (model.RefreshToken, error) {
	var (
		t       model.RefreshToken
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrTokenInvalid
	}
	if err != nil {
		return t, err
	}
	if revoked.Valid {
		at := revoked.Time
		t.RevokedAt = &at
	}
	return t, nil
}

// Validate returns the owner of tokenHash if the token is live at now.
func (r *TokenRepo) Validate(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	t, err := r.Lookup(ctx, tokenHash)
	if err != nil {
		return 0, err
	}
	if t.RevokedAt != nil || !now.Before(t.ExpiresAt) {
		return 0, ErrTokenInvalid
	}
	return t.UserID, nil
}

// Revoke marks one token as revoked.  Revoking twice is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAll revokes every active token of userID.
func (r *TokenRepo) RevokeAll(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
