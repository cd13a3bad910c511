package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"accountsvc/internal/mail"
	"accountsvc/internal/service/servicetest"
)

const testSecret = "test-session-secret"

type fixture struct {
	now time.Time

	users   *servicetest.Users
	tokens  *servicetest.ResetTokens
	mailer  *servicetest.Mailer
	avatars *servicetest.Avatars

	creds    *CredentialStore
	sessions *SessionTokens
	resets   *ResetTokenStore
	auth     *AuthService
	reset    *PasswordResetService
	avatar   *AvatarService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		users:   servicetest.NewUsers(),
		tokens:  servicetest.NewResetTokens(),
		mailer:  &servicetest.Mailer{},
		avatars: servicetest.NewAvatars(),
	}
	clock := Clock(func() time.Time { return f.now })
	f.users.Clock = clock

	log := zerolog.Nop()
	f.creds = NewCredentialStore(f.users, WithPasswordHasher(servicetest.FastHash))
	f.sessions = NewSessionTokens(testSecret, 24*time.Hour, clock)
	f.resets = NewResetTokenStore(f.tokens, 15*time.Minute, clock)
	f.auth = NewAuthService(f.creds, f.sessions, log)
	f.reset = NewPasswordResetService(f.creds, f.resets, f.mailer, "https://app.example.com/", log)
	f.avatar = NewAvatarService(f.creds, f.avatars, 1024, log)

	t.Cleanup(func() { f.mailer.AssertExpectations(t) })
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) signup(t *testing.T, email, password string) AuthResult {
	t.Helper()
	res, err := f.auth.Signup(t.Context(), SignupInput{
		Name:     "Ada",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return res
}

var resetLinkPattern = regexp.MustCompile(`https://app\.example\.com/reset-password/([A-Za-z0-9]+)`)

func secretFromMail(t *testing.T, msg mail.Message) string {
	t.Helper()
	m := resetLinkPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "reset link not found in %q", msg.HTML)
	return m[1]
}
