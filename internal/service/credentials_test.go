package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/models"
	"accountsvc/internal/repository"
	"accountsvc/internal/service/servicetest"
)

func TestCredentialStore_Create(t *testing.T) {
	f := newFixture(t)

	user, err := f.creds.Create(t.Context(), NewUser{
		Name:     "  Ada  ",
		Email:    "  Ada@Example.COM ",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.DefaultPhoto, user.Photo)
	assert.Equal(t, models.DefaultPhone, user.Phone)
	assert.Equal(t, models.DefaultBio, user.Bio)
	assert.NotContains(t, string(user.PasswordHash), "secret1")
	assert.True(t, strings.HasPrefix(string(user.PasswordHash), "$argon2id$"))

	stored, err := f.users.GetByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	assert.True(t, f.creds.VerifyPassword(stored, "secret1"))
	assert.False(t, f.creds.VerifyPassword(stored, "secret2"))
}

func TestCredentialStore_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      NewUser
		message string
	}{
		{"missing name", NewUser{Email: "a@b.co", Password: "secret1"}, msgFillAllFields},
		{"blank name", NewUser{Name: "   ", Email: "a@b.co", Password: "secret1"}, msgFillAllFields},
		{"missing email", NewUser{Name: "A", Password: "secret1"}, msgFillAllFields},
		{"missing password", NewUser{Name: "A", Email: "not-an-email"}, msgFillAllFields},
		{"short password", NewUser{Name: "A", Email: "a@b.co", Password: "12345"}, msgPasswordTooShort},
		{"long password", NewUser{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 24)}, msgPasswordTooLong},
		{"invalid email", NewUser{Name: "A", Email: "not-an-email", Password: "secret1"}, msgInvalidEmail},
		{"long bio", NewUser{Name: "A", Email: "a@b.co", Password: "secret1", Bio: strings.Repeat("b", 251)}, msgBioTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.creds.Create(t.Context(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestCredentialStore_PasswordBoundaries(t *testing.T) {
	f := newFixture(t)

	_, err := f.creds.Create(t.Context(), NewUser{Name: "A", Email: "six@b.co", Password: "123456"})
	assert.NoError(t, err)

	_, err = f.creds.Create(t.Context(), NewUser{Name: "A", Email: "max@b.co", Password: strings.Repeat("x", 23)})
	assert.NoError(t, err)
}

func TestCredentialStore_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.creds.Create(t.Context(), NewUser{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.creds.Create(t.Context(), NewUser{Name: "B", Email: "A@B.co", Password: "secret2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, msgEmailInUse, Message(err))
}

// racingUsers hides existing rows from the lookup, as a concurrent insert
// between lookup and insert would.
type racingUsers struct {
	*servicetest.Users
}

func (r racingUsers) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, repository.ErrUserNotFound
}

func TestCredentialStore_DuplicateEmailFromConstraint(t *testing.T) {
	users := servicetest.NewUsers()
	creds := NewCredentialStore(racingUsers{users}, WithPasswordHasher(servicetest.FastHash))

	_, err := creds.Create(t.Context(), NewUser{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	_, err = creds.Create(t.Context(), NewUser{Name: "B", Email: "a@b.co", Password: "secret1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCredentialStore_Find(t *testing.T) {
	f := newFixture(t)
	created, err := f.creds.Create(t.Context(), NewUser{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	byEmail, err := f.creds.FindByEmail(t.Context(), " A@B.CO")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := f.creds.FindByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	_, err = f.creds.FindByEmail(t.Context(), "nobody@b.co")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.creds.FindByID(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, msgUserNotFound, Message(err))
}

func TestCredentialStore_VerifyPasswordCorruptHash(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.creds.VerifyPassword(models.User{PasswordHash: []byte("plain")}, "plain"))
}

func TestCredentialStore_Update(t *testing.T) {
	f := newFixture(t)
	user, err := f.creds.Create(t.Context(), NewUser{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	name, empty := "Grace", ""
	require.NoError(t, f.creds.Update(t.Context(), &user, models.UserPatch{Name: &name, Bio: &empty}))
	assert.Equal(t, "Grace", user.Name)
	assert.Equal(t, models.DefaultBio, user.Bio)

	stored, err := f.users.GetByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.Name)

	long := strings.Repeat("b", 251)
	err = f.creds.Update(t.Context(), &user, models.UserPatch{Bio: &long})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgBioTooLong, Message(err))
}

func TestCredentialStore_SetPassword(t *testing.T) {
	f := newFixture(t)
	user, err := f.creds.Create(t.Context(), NewUser{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	oldHash := user.PasswordHash

	require.NoError(t, f.creds.SetPassword(t.Context(), &user, "secret2"))
	assert.NotEqual(t, oldHash, user.PasswordHash)

	stored, err := f.users.GetByID(t.Context(), user.ID)
	require.NoError(t, err)
	assert.True(t, f.creds.VerifyPassword(stored, "secret2"))
	assert.False(t, f.creds.VerifyPassword(stored, "secret1"))

	err = f.creds.SetPassword(t.Context(), &user, "123")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgPasswordTooShort, Message(err))
}
