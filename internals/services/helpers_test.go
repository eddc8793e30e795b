package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/config"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/repositories"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	clock   *testClock
	users   *repositories.MemoryUserRepository
	records *repositories.MemoryOTPRepository
	mailer  *utils.MemoryMailer
	signer  *utils.Signer
	otp     *OTPService
	auth    *AuthService
	tokens  *utils.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)}
	env := &testEnv{
		clock:   clock,
		users:   repositories.NewMemoryUserRepository(),
		records: repositories.NewMemoryOTPRepository(),
		mailer:  &utils.MemoryMailer{},
		signer:  utils.NewSigner([]byte("services-test-secret-0123456789abcdef"), clock.Now),
	}
	env.otp = NewOTPService(env.users, env.records, env.mailer, env.signer, nil, DefaultOTPOptions())
	env.tokens = utils.NewTokenManager(env.signer, &config.CookieConfig{Name: "session", Path: "/", HttpOnly: true}, 0)
	env.auth = NewAuthService(env.users, env.otp, env.tokens, nil, 8)
	return env
}

// withCooldown rebuilds the services with a resend cooldown.
func (e *testEnv) withCooldown(d time.Duration) {
	opts := DefaultOTPOptions()
	opts.ResendCooldown = d
	e.otp = NewOTPService(e.users, e.records, e.mailer, e.signer, nil, opts)
	e.auth = NewAuthService(e.users, e.otp, e.tokens, nil, 8)
}

func (e *testEnv) seedUser(t *testing.T, email, password string, role models.Role, banned bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Email: email, Name: "Test", PasswordHash: string(hash), Role: role, Banned: banned}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

var codePattern = regexp.MustCompile(`<strong>(\d{6})</strong>`)

// lastCode reads the code out of the most recent email.
func (e *testEnv) lastCode(t *testing.T) string {
	t.Helper()
	sent, ok := e.mailer.Last()
	require.True(t, ok, "no email sent")
	m := codePattern.FindStringSubmatch(sent.Body)
	require.Len(t, m, 2)
	return m[1]
}

func otherCode(code string) string {
	b := []byte(code)
	b[5] = '0' + (b[5]-'0'+1)%10
	return string(b)
}

// failingOTPRepository returns err from every call.
type failingOTPRepository struct {
	err error
}

func (f failingOTPRepository) Upsert(context.Context, *models.OTPRecord) error { return f.err }
func (f failingOTPRepository) Get(context.Context, string) (*models.OTPRecord, error) {
	return nil, f.err
}
func (f failingOTPRepository) Delete(context.Context, string) error { return f.err }
func (f failingOTPRepository) Consume(context.Context, string, string) (bool, error) {
	return false, f.err
}
func (f failingOTPRepository) AddFailedAttempt(context.Context, string, string) (int, error) {
	return 0, f.err
}
func (f failingOTPRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

var errDriver = errors.New("dial tcp 10.0.0.5:5432: connection refused")
