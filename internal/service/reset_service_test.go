package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/mail"
)

func (f *fixture) captureMail(t *testing.T) *mail.Message {
	t.Helper()
	var sent mail.Message
	f.mailer.On("Send", mock.Anything, mock.AnythingOfType("mail.Message")).
		Run(func(args mock.Arguments) {
			sent = args.Get(1).(mail.Message)
		}).
		Return(nil).
		Once()
	return &sent
}

func TestPasswordReset_FullFlow(t *testing.T) {
	f := newFixture(t)
	res := f.signup(t, "ada@example.com", "secret1")
	sent := f.captureMail(t)

	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ADA@example.com"))

	assert.Equal(t, "ada@example.com", sent.To)
	assert.Equal(t, mail.ResetPasswordSubject, sent.Subject)
	assert.Contains(t, sent.HTML, "Hello Ada")
	assert.Contains(t, sent.HTML, "15 minutes")

	secret := secretFromMail(t, *sent)
	assert.True(t, strings.HasSuffix(secret, res.User.ID))

	f.advance(10 * time.Minute)
	require.NoError(t, f.reset.ResetPassword(t.Context(), secret, "newpass1"))

	_, err := f.auth.Login(t.Context(), LoginInput{Email: "ada@example.com", Password: "newpass1"})
	assert.NoError(t, err)
	_, err = f.auth.Login(t.Context(), LoginInput{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.reset.ResetPassword(t.Context(), secret, "another1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_ExpiredSecret(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ada@example.com", "secret1")
	sent := f.captureMail(t)

	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ada@example.com"))
	secret := secretFromMail(t, *sent)

	f.advance(16 * time.Minute)
	err := f.reset.ResetPassword(t.Context(), secret, "newpass1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
	assert.Equal(t, msgInvalidResetToken, Message(err))
}

func TestPasswordReset_SecondRequestInvalidatesFirst(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ada@example.com", "secret1")

	first := f.captureMail(t)
	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ada@example.com"))
	firstSecret := secretFromMail(t, *first)

	second := f.captureMail(t)
	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ada@example.com"))
	secondSecret := secretFromMail(t, *second)

	assert.ErrorIs(t, f.reset.ResetPassword(t.Context(), firstSecret, "newpass1"), ErrInvalidResetToken)
	assert.NoError(t, f.reset.ResetPassword(t.Context(), secondSecret, "newpass1"))
}

func TestPasswordReset_InvalidPasswordKeepsToken(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ada@example.com", "secret1")
	sent := f.captureMail(t)

	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ada@example.com"))
	secret := secretFromMail(t, *sent)

	err := f.reset.ResetPassword(t.Context(), secret, "short")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgPasswordTooShort, Message(err))

	assert.NoError(t, f.reset.ResetPassword(t.Context(), secret, "longenough"))
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.reset.ForgotPassword(t.Context(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.tokens.All())

	err = f.reset.ForgotPassword(t.Context(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgEmailRequired, Message(err))
}

func TestPasswordReset_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "ada@example.com", "secret1")
	cause := errors.New("connection refused")
	f.mailer.On("Send", mock.Anything, mock.Anything).Return(cause).Once()

	err := f.reset.ForgotPassword(t.Context(), "ada@example.com")
	assert.ErrorIs(t, err, ErrEmailDelivery)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, msgEmailNotSent, Message(err))
}

func TestPasswordReset_UnknownSecret(t *testing.T) {
	f := newFixture(t)

	err := f.reset.ResetPassword(t.Context(), "0123abcd", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_UserDeletedAfterIssue(t *testing.T) {
	f := newFixture(t)
	res := f.signup(t, "ada@example.com", "secret1")
	sent := f.captureMail(t)

	require.NoError(t, f.reset.ForgotPassword(t.Context(), "ada@example.com"))
	f.users.Remove(res.User.ID)

	err := f.reset.ResetPassword(t.Context(), secretFromMail(t, *sent), "newpass1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPasswordReset_ResetURL(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "https://app.example.com/reset-password/abc", f.reset.ResetURL("abc"))
}
