package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/tasks"
)

type fakePublisher struct {
	mu       sync.Mutex
	payloads []map[string]any
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, values map[string]any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.payloads = append(p.payloads, values)
	return "1-0", nil
}

func TestScheduler_EnqueuePurge(t *testing.T) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, "0 */15 * * * *", zerolog.Nop())

	s.enqueuePurge()

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, tasks.TypePurgeResetTokens, pub.payloads[0]["type"])
	assert.NotEmpty(t, pub.payloads[0]["enqueued_at"])
}

func TestScheduler_EnqueueFailureIsLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	s := NewScheduler(pub, "0 */15 * * * *", zerolog.Nop())

	assert.NotPanics(t, s.enqueuePurge)
	assert.Empty(t, pub.payloads)
}

func TestScheduler_Start(t *testing.T) {
	s := NewScheduler(&fakePublisher{}, "0 */15 * * * *", zerolog.Nop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	<-s.Stop().Done()

	bad := NewScheduler(&fakePublisher{}, "every quarter hour", zerolog.Nop())
	assert.Error(t, bad.Start())

	disabled := NewScheduler(nil, "0 */15 * * * *", zerolog.Nop())
	assert.NoError(t, disabled.Start())
	assert.Empty(t, disabled.cron.Entries())
}
