package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/security"
)

func TestResetTokenStore_IssueFor(t *testing.T) {
	f := newFixture(t)

	secret, err := f.resets.IssueFor(t.Context(), "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(secret, "user-1"))
	assert.Len(t, secret, 64+len("user-1"))

	stored := f.tokens.All()
	require.Len(t, stored, 1)
	assert.Equal(t, "user-1", stored[0].UserID)
	assert.Equal(t, security.HashResetSecret(secret), stored[0].TokenHash)
	assert.NotEqual(t, secret, stored[0].TokenHash)
	assert.Equal(t, f.now.Add(15*time.Minute), stored[0].ExpiresAt)
}

func TestResetTokenStore_IssueReplacesPrevious(t *testing.T) {
	f := newFixture(t)

	first, err := f.resets.IssueFor(t.Context(), "user-1")
	require.NoError(t, err)
	second, err := f.resets.IssueFor(t.Context(), "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Len(t, f.tokens.All(), 1)

	_, err = f.resets.Consume(t.Context(), first)
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	userID, err := f.resets.Consume(t.Context(), second)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestResetTokenStore_ConsumeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	secret, err := f.resets.IssueFor(t.Context(), "user-1")
	require.NoError(t, err)

	userID, err := f.resets.Consume(t.Context(), secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Empty(t, f.tokens.All())

	_, err = f.resets.Consume(t.Context(), secret)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.Equal(t, msgInvalidResetToken, Message(err))
}

func TestResetTokenStore_ConsumeExpired(t *testing.T) {
	f := newFixture(t)
	secret, err := f.resets.IssueFor(t.Context(), "user-1")
	require.NoError(t, err)

	f.advance(15 * time.Minute)
	_, err = f.resets.Consume(t.Context(), secret)
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenStore_ConsumeUnknown(t *testing.T) {
	f := newFixture(t)

	for _, secret := range []string{"", "deadbeef"} {
		_, err := f.resets.Consume(t.Context(), secret)
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	}
}
