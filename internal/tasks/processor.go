package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"accountsvc/internal/metrics"
)

const TypePurgeResetTokens = "purge_reset_tokens"

type TaskPayload struct {
	Type       string `json:"type"`
	EnqueuedAt string `json:"enqueued_at"`
}

// NewPurgeResetTokens builds the stream values of a purge task.
func NewPurgeResetTokens(now time.Time) map[string]any {
	return map[string]any{
		"type":        TypePurgeResetTokens,
		"enqueued_at": now.UTC().Format(time.RFC3339),
	}
}

// ResetTokenPurger is satisfied by repository.ResetTokenRepository.
type ResetTokenPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Processor struct {
	tokens ResetTokenPurger
	now    func() time.Time
	logger zerolog.Logger
}

func NewProcessor(tokens ResetTokenPurger, logger zerolog.Logger) *Processor {
	return &Processor{
		tokens: tokens,
		now:    time.Now,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case TypePurgeResetTokens:
		return p.purgeResetTokens(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Str("message_id", msg.ID).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) purgeResetTokens(ctx context.Context) error {
	n, err := p.tokens.DeleteExpired(ctx, p.now())
	if err != nil {
		return fmt.Errorf("purge reset tokens: %w", err)
	}
	metrics.PurgedResetTokens.Add(float64(n))
	p.logger.Info().Int64("deleted", n).Msg("expired reset tokens purged")
	return nil
}
