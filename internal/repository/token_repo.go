package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-catalog-api/internal/model"
	"go-catalog-api/internal/token"
)

// TokenRepository is the ledger of issued non-access tokens. A row here is
// the sole source of truth for whether a refresh/reset/verify token is still
// live; the signed token's own expiry is checked by the codec, not here.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Record(ctx context.Context, tokenString string, userID string, purpose token.Purpose, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tokens (token, user_id, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tokenString, userID, string(purpose), expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record %s token: %w", purpose, err)
	}
	return nil
}

// FindLive looks up the ledger entry consumed by refresh/reset/verify flows.
// Absence means the token was revoked or never issued.
func (r *TokenRepository) FindLive(ctx context.Context, tokenString string, purpose token.Purpose, userID string) (model.TokenRecord, error) {
	var rec model.TokenRecord
	err := r.pool.QueryRow(ctx,
		`SELECT token, user_id, purpose, expires_at, created_at
		 FROM tokens
		 WHERE token = $1 AND purpose = $2 AND user_id = $3`,
		tokenString, string(purpose), userID).
		Scan(&rec.Token, &rec.UserID, &rec.Purpose, &rec.ExpiresAt, &rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("find %s token: %w", purpose, err)
	}
	return rec, nil
}

func (r *TokenRepository) DeleteOne(ctx context.Context, tokenString string, purpose token.Purpose) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tokens WHERE token = $1 AND purpose = $2`,
		tokenString, string(purpose))
	if err != nil {
		return fmt.Errorf("delete %s token: %w", purpose, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTokenNotFound
	}
	return nil
}

// DeleteAllForPurpose purges every outstanding token of one purpose for a
// user, so a consumed reset/verify token cannot be replayed via a sibling.
func (r *TokenRepository) DeleteAllForPurpose(ctx context.Context, userID string, purpose token.Purpose) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM tokens WHERE user_id = $1 AND purpose = $2`,
		userID, string(purpose))
	if err != nil {
		return fmt.Errorf("delete %s tokens for user: %w", purpose, err)
	}
	return nil
}

func (r *TokenRepository) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
