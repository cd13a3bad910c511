package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"accountsvc/internal/mail"
	"accountsvc/internal/metrics"
)

type PasswordResetService struct {
	creds       *CredentialStore
	tokens      *ResetTokenStore
	mailer      mail.Mailer
	frontendURL string
	log         zerolog.Logger
}

func NewPasswordResetService(
	creds *CredentialStore,
	tokens *ResetTokenStore,
	mailer mail.Mailer,
	frontendURL string,
	log zerolog.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		creds:       creds,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// ResetURL is the client page a reset secret is redeemed on.
func (s *PasswordResetService) ResetURL(secret string) string {
	return s.frontendURL + "/reset-password/" + secret
}

// ForgotPassword issues a fresh reset token for the account behind email and
// mails the reset link to it.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) error {
	err := s.forgotPassword(ctx, email)
	recordOutcome(metrics.EventForgotPassword, err)
	return err
}

func (s *PasswordResetService) forgotPassword(ctx context.Context, email string) error {
	if NormalizeEmail(email) == "" {
		return newError(ErrValidation, msgEmailRequired)
	}

	user, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	secret, err := s.tokens.IssueFor(ctx, user.ID)
	if err != nil {
		return err
	}

	body, err := mail.RenderResetPassword(mail.ResetPasswordData{
		Name:     user.Name,
		ResetURL: s.ResetURL(secret),
		ValidFor: s.tokens.TTL(),
	})
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, mail.Message{
		Subject: mail.ResetPasswordSubject,
		HTML:    body,
		To:      user.Email,
	}); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("send reset email failed")
		return wrapError(ErrEmailDelivery, msgEmailNotSent, err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("reset email sent")
	return nil
}

// ResetPassword redeems secret and stores newPassword for its user. The
// password is checked before the token is spent.
func (s *PasswordResetService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	err := s.resetPassword(ctx, secret, newPassword)
	recordOutcome(metrics.EventResetPassword, err)
	return err
}

func (s *PasswordResetService) resetPassword(ctx context.Context, secret, newPassword string) error {
	if err := s.creds.ValidatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.tokens.Consume(ctx, secret)
	if err != nil {
		return err
	}

	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.creds.SetPassword(ctx, &user, newPassword); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}
