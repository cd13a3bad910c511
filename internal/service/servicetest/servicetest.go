// Package servicetest provides in-memory collaborators for exercising the
// account services without Postgres, SMTP or object storage.
package servicetest

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"accountsvc/internal/mail"
	"accountsvc/internal/models"
	"accountsvc/internal/repository"
	"accountsvc/internal/security"
)

var fastParams = security.Argon2Params{
	Time:    1,
	Memory:  1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// FastHash hashes with argon2id parameters cheap enough for tests.
func FastHash(password string) ([]byte, error) {
	return security.HashPasswordWithParams(password, fastParams)
}

// Users mirrors repository.UserRepository, including the unique email
// constraint.
type Users struct {
	mu    sync.Mutex
	byID  map[string]models.User
	Clock func() time.Time
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]models.User)}
}

func (u *Users) now() time.Time {
	if u.Clock != nil {
		return u.Clock()
	}
	return time.Now()
}

func (u *Users) Create(_ context.Context, user models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.byID {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	now := u.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	u.byID[user.ID] = user
	return nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, id string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (u *Users) Update(_ context.Context, user models.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	stored, ok := u.byID[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Photo = user.Photo
	stored.Phone = user.Phone
	stored.Bio = user.Bio
	stored.UpdatedAt = u.now()
	u.byID[user.ID] = stored
	return nil
}

func (u *Users) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	stored, ok := u.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = u.now()
	u.byID[id] = stored
	return nil
}

// Remove deletes a user directly, as an operator would.
func (u *Users) Remove(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.byID, id)
}

// ResetTokens mirrors repository.ResetTokenRepository.
type ResetTokens struct {
	mu     sync.Mutex
	tokens map[string]models.ResetToken
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{tokens: make(map[string]models.ResetToken)}
}

func (r *ResetTokens) Create(_ context.Context, token models.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.tokens {
		if existing.UserID == token.UserID {
			delete(r.tokens, id)
		}
	}
	r.tokens[token.ID] = token
	return nil
}

func (r *ResetTokens) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *ResetTokens) FindValid(_ context.Context, tokenHash string, now time.Time) (models.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash && !token.Expired(now) {
			return token, nil
		}
	}
	return models.ResetToken{}, repository.ErrResetTokenNotFound
}

func (r *ResetTokens) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return repository.ErrResetTokenNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *ResetTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, token := range r.tokens {
		if token.Expired(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// All returns a snapshot of the stored tokens.
func (r *ResetTokens) All() []models.ResetToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ResetToken, 0, len(r.tokens))
	for _, token := range r.tokens {
		out = append(out, token)
	}
	return out
}

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Avatars keeps uploaded objects in memory.
type Avatars struct {
	mu      sync.Mutex
	BaseURL string
	Objects map[string][]byte
	Err     error
}

func NewAvatars() *Avatars {
	return &Avatars{BaseURL: "http://storage.test/avatars", Objects: make(map[string][]byte)}
}

func (a *Avatars) PutAvatar(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if a.Err != nil {
		return "", a.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Objects[key] = data
	return a.BaseURL + "/" + key, nil
}
