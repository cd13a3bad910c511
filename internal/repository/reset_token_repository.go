package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"accountsvc/internal/models"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

type ResetTokenRepository struct {
	db DBTX
}

func NewResetTokenRepository(db DBTX) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create stores token, replacing any token the user already holds. Two
// concurrent issues for one user end with the last writer's token.
func (r *ResetTokenRepository) Create(ctx context.Context, token models.ResetToken) error {
	const query = `
		INSERT INTO reset_tokens (id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			token_hash = EXCLUDED.token_hash,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.CreatedAt,
		token.ExpiresAt,
	)
	return err
}

// DeleteByUser removes every token of the user. Deleting nothing is not an
// error.
func (r *ResetTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM reset_tokens WHERE user_id = $1`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// FindValid returns the token whose hash matches and that is still live at now.
func (r *ResetTokenRepository) FindValid(ctx context.Context, tokenHash string, now time.Time) (models.ResetToken, error) {
	const query = `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM reset_tokens
		WHERE token_hash = $1 AND expires_at > $2
	`
	var token models.ResetToken
	err := r.db.QueryRow(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ResetToken{}, ErrResetTokenNotFound
		}
		return models.ResetToken{}, err
	}
	return token, nil
}

func (r *ResetTokenRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM reset_tokens WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrResetTokenNotFound
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM reset_tokens WHERE expires_at <= $1`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
