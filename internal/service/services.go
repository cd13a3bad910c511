package service

import (
	"github.com/rs/zerolog"

	"accountsvc/internal/config"
	"accountsvc/internal/mail"
)

// Services bundles the account services built from one configuration.
type Services struct {
	Auth   *AuthService
	Reset  *PasswordResetService
	Avatar *AvatarService
}

func NewServices(
	cfg *config.AppConfig,
	users UserRepository,
	tokens ResetTokenRepository,
	avatars AvatarStorage,
	mailer mail.Mailer,
	log zerolog.Logger,
	opts ...CredentialOption,
) Services {
	creds := NewCredentialStore(users, opts...)
	sessions := NewSessionTokens(cfg.Security.SessionSecret, cfg.Security.SessionTTL, nil)
	resets := NewResetTokenStore(tokens, cfg.Security.ResetTTL, nil)

	return Services{
		Auth:   NewAuthService(creds, sessions, log.With().Str("component", "auth").Logger()),
		Reset:  NewPasswordResetService(creds, resets, mailer, cfg.FrontendURL, log.With().Str("component", "reset").Logger()),
		Avatar: NewAvatarService(creds, avatars, cfg.Storage.MaxAvatarSize, log.With().Str("component", "avatar").Logger()),
	}
}
