package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accountsvc/internal/ids"
	"accountsvc/internal/models"
	"accountsvc/internal/repository"
	"accountsvc/internal/security"
)

// ResetTokenRepository is satisfied by repository.ResetTokenRepository.
type ResetTokenRepository interface {
	Create(ctx context.Context, token models.ResetToken) error
	DeleteByUser(ctx context.Context, userID string) error
	FindValid(ctx context.Context, tokenHash string, now time.Time) (models.ResetToken, error)
	Delete(ctx context.Context, id string) error
}

// ResetTokenStore keeps at most one live reset token per user. Only the hash
// of a secret is ever persisted.
type ResetTokenStore struct {
	tokens ResetTokenRepository
	ttl    time.Duration
	clock  Clock
}

func NewResetTokenStore(tokens ResetTokenRepository, ttl time.Duration, clock Clock) *ResetTokenStore {
	return &ResetTokenStore{tokens: tokens, ttl: ttl, clock: clock}
}

func (s *ResetTokenStore) TTL() time.Duration {
	return s.ttl
}

// IssueFor replaces any outstanding token of the user and returns the new
// plaintext secret.
func (s *ResetTokenStore) IssueFor(ctx context.Context, userID string) (string, error) {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return "", fmt.Errorf("delete previous reset tokens: %w", err)
	}

	secret, hash, err := security.GenerateResetSecret(userID)
	if err != nil {
		return "", err
	}

	now := s.clock.now()
	token := models.ResetToken{
		ID:        ids.New(),
		UserID:    userID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return secret, nil
}

// Consume redeems secret and returns the user id it was issued for. The
// token is deleted, so a second call with the same secret fails.
func (s *ResetTokenStore) Consume(ctx context.Context, secret string) (string, error) {
	if secret == "" {
		return "", newError(ErrInvalidResetToken, msgInvalidResetToken)
	}

	token, err := s.tokens.FindValid(ctx, security.HashResetSecret(secret), s.clock.now())
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return "", newError(ErrInvalidResetToken, msgInvalidResetToken)
		}
		return "", fmt.Errorf("find reset token: %w", err)
	}

	// A concurrent consumer that deleted the row first wins.
	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return "", newError(ErrInvalidResetToken, msgInvalidResetToken)
		}
		return "", fmt.Errorf("delete reset token: %w", err)
	}
	return token.UserID, nil
}
