package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"accountsvc/internal/ids"
	"accountsvc/internal/models"
	"accountsvc/internal/repository"
	"accountsvc/internal/security"
)

// UserRepository is the persistence contract of the credential store.
// repository.UserRepository satisfies it.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

// PasswordHasher turns a plaintext password into its stored encoding.
type PasswordHasher func(password string) ([]byte, error)

type NewUser struct {
	Name     string
	Email    string
	Password string
	Photo    string
	Phone    string
	Bio      string
}

type newUserInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=23"`
	Bio      string `validate:"max=250"`
}

type CredentialStore struct {
	users    UserRepository
	hash     PasswordHasher
	validate *validator.Validate
}

type CredentialOption func(*CredentialStore)

func WithPasswordHasher(h PasswordHasher) CredentialOption {
	return func(s *CredentialStore) {
		s.hash = h
	}
}

func NewCredentialStore(users UserRepository, opts ...CredentialOption) *CredentialStore {
	s := &CredentialStore{
		users:    users,
		hash:     security.HashPassword,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lower-cases an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create validates in, hashes the password and persists a new user with the
// profile defaults applied.
func (s *CredentialStore) Create(ctx context.Context, in NewUser) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)

	if err := s.validate.Struct(newUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Bio:      in.Bio,
	}); err != nil {
		return models.User{}, translateValidation(err)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return models.User{}, newError(ErrDuplicateEmail, msgEmailInUse)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           ids.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Photo:        defaultString(in.Photo, models.DefaultPhoto),
		Phone:        defaultString(in.Phone, models.DefaultPhone),
		Bio:          defaultString(in.Bio, models.DefaultBio),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, newError(ErrDuplicateEmail, msgEmailInUse)
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	return user, s.lookupError(err)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	return user, s.lookupError(err)
}

// VerifyPassword reports whether candidate matches the stored hash. A
// corrupt hash never matches.
func (s *CredentialStore) VerifyPassword(user models.User, candidate string) bool {
	ok, err := security.VerifyPassword(candidate, user.PasswordHash)
	return err == nil && ok
}

// Update applies patch to user and persists the profile fields.
func (s *CredentialStore) Update(ctx context.Context, user *models.User, patch models.UserPatch) error {
	if patch.Bio != nil {
		if err := s.validate.Var(*patch.Bio, "max=250"); err != nil {
			return newError(ErrValidation, msgBioTooLong)
		}
	}
	if !patch.Apply(user) {
		return nil
	}
	if err := s.users.Update(ctx, *user); err != nil {
		return s.lookupError(err)
	}
	return nil
}

// SetPassword validates and re-hashes raw, then stores it for user.
func (s *CredentialStore) SetPassword(ctx context.Context, user *models.User, raw string) error {
	if err := s.ValidatePassword(raw); err != nil {
		return err
	}
	hash, err := s.hash(raw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return s.lookupError(err)
	}
	user.PasswordHash = hash
	return nil
}

func (s *CredentialStore) ValidatePassword(raw string) error {
	if err := s.validate.Var(raw, "required,min=6,max=23"); err != nil {
		return translateValidation(err)
	}
	return nil
}

func (s *CredentialStore) lookupError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return newError(ErrUserNotFound, msgUserNotFound)
	default:
		return fmt.Errorf("load user: %w", err)
	}
}

// translateValidation maps validator failures onto client messages. Missing
// fields win over every other failure.
func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return wrapError(ErrValidation, msgFillAllFields, err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return newError(ErrValidation, msgFillAllFields)
		}
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "min":
		return newError(ErrValidation, msgPasswordTooShort)
	case fe.Tag() == "max" && fe.Field() == "Bio":
		return newError(ErrValidation, msgBioTooLong)
	case fe.Tag() == "max":
		return newError(ErrValidation, msgPasswordTooLong)
	case fe.Tag() == "email":
		return newError(ErrValidation, msgInvalidEmail)
	default:
		return newError(ErrValidation, msgFillAllFields)
	}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
