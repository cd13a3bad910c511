package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"accountsvc/internal/metrics"
	"accountsvc/internal/models"
)

type AuthService struct {
	creds    *CredentialStore
	sessions *SessionTokens
	log      zerolog.Logger
}

func NewAuthService(creds *CredentialStore, sessions *SessionTokens, log zerolog.Logger) *AuthService {
	return &AuthService{
		creds:    creds,
		sessions: sessions,
		log:      log,
	}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Photo    string
	Bio      string
}

// AuthResult is returned by the operations that open a session.
type AuthResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	user, err := s.creds.Create(ctx, NewUser{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Photo:    input.Photo,
		Bio:      input.Bio,
	})
	if err != nil {
		recordOutcome(metrics.EventSignup, err)
		return AuthResult{}, err
	}

	result, err := s.openSession(user)
	recordOutcome(metrics.EventSignup, err)
	if err != nil {
		return AuthResult{}, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return result, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	result, err := s.login(ctx, input)
	recordOutcome(metrics.EventLogin, err)
	return result, err
}

func (s *AuthService) login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthResult{}, newError(ErrMissingCredentials, msgMissingCredentials)
	}

	user, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, newError(ErrInvalidCredentials, msgInvalidCredentials)
		}
		return AuthResult{}, err
	}

	if !s.creds.VerifyPassword(user, input.Password) {
		return AuthResult{}, newError(ErrInvalidCredentials, msgInvalidCredentials)
	}
	return s.openSession(user)
}

func (s *AuthService) openSession(user models.User) (AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	userID, err := s.sessions.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	return s.creds.FindByID(ctx, userID)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	return s.creds.FindByID(ctx, userID)
}

// LoginStatus reports whether token is present and verifies. The user is
// not looked up.
func (s *AuthService) LoginStatus(token string) bool {
	_, err := s.sessions.Verify(token)
	return err == nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, patch models.UserPatch) (models.User, error) {
	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if err := s.creds.Update(ctx, &user, patch); err != nil {
		return models.User{}, err
	}
	return user, nil
}

type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	err := s.changePassword(ctx, userID, input)
	recordOutcome(metrics.EventChangePassword, err)
	if err == nil {
		s.log.Info().Str("user_id", userID).Msg("password changed")
	}
	return err
}

func (s *AuthService) changePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	user, err := s.creds.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if input.OldPassword == "" || input.NewPassword == "" {
		return newError(ErrMissingFields, msgPasswordsRequired)
	}
	if input.OldPassword == input.NewPassword {
		return newError(ErrSamePassword, msgSamePassword)
	}
	if !s.creds.VerifyPassword(user, input.OldPassword) {
		return newError(ErrInvalidCredentials, msgWrongOldPassword)
	}
	return s.creds.SetPassword(ctx, &user, input.NewPassword)
}

// recordOutcome counts err as a failure when it is a client error and as an
// error otherwise.
func recordOutcome(event string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		var svcErr *Error
		if errors.As(err, &svcErr) && !errors.Is(err, ErrEmailDelivery) {
			outcome = metrics.OutcomeFailure
		}
	}
	metrics.RecordAuthEvent(event, outcome)
}
