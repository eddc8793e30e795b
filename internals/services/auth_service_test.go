package services

import (
	"context"
	"testing"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"github.com/stretchr/testify/require"
)

func TestAuthService_Login_Customer(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "customer@example.com", "password123", models.RoleUser, false)

	res, err := env.auth.Login(context.Background(), "Customer@Example.com", "password123", "")
	require.NoError(t, err)
	require.False(t, res.OTPRequired)
	require.NotEmpty(t, res.Token)

	claims := env.tokens.Validate(res.Token)
	require.NotNil(t, claims)
	require.Equal(t, user.ID, claims.UID)
	require.Equal(t, models.RoleUser, claims.Role)
	require.Equal(t, 0, env.mailer.Count())
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "customer@example.com", "password123", models.RoleUser, false)

	_, err := env.auth.Login(context.Background(), "customer@example.com", "wrong-password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(context.Background(), "nobody@example.com", "password123", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_Banned(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "banned@example.com", "password123", models.RoleAdmin, true)

	_, err := env.auth.Login(context.Background(), "banned@example.com", "password123", "")
	require.ErrorIs(t, err, ErrAccountBanned)
	require.Equal(t, 0, env.mailer.Count())
}

func TestAuthService_Login_AdminStepUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, false)

	res, err := env.auth.Login(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, res.OTPRequired)
	require.Empty(t, res.Token)
	code := env.lastCode(t)

	record, err := env.records.Get(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, models.PurposeAdminLogin, record.Purpose)

	// asking again replaces the pending code
	res, err = env.auth.Login(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, res.OTPRequired)
	require.Equal(t, 2, env.mailer.Count())
	code = env.lastCode(t)

	_, err = env.auth.Login(ctx, "admin@example.com", "password123", otherCode(code))
	require.ErrorIs(t, err, ErrIncorrectCode)

	res, err = env.auth.Login(ctx, "admin@example.com", "password123", code)
	require.NoError(t, err)
	require.False(t, res.OTPRequired)
	claims := env.tokens.Validate(res.Token)
	require.NotNil(t, claims)
	require.Equal(t, admin.ID, claims.UID)
	require.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_Login_AdminStepUpInsideCooldown(t *testing.T) {
	env := newTestEnv(t)
	env.withCooldown(time.Minute)
	ctx := context.Background()
	env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, false)

	res, err := env.auth.Login(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, res.OTPRequired)
	code := env.lastCode(t)

	// the pending admin_login code stays valid
	env.clock.Advance(10 * time.Second)
	res, err = env.auth.Login(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, res.OTPRequired)
	require.Equal(t, 1, env.mailer.Count())

	res, err = env.auth.Login(ctx, "admin@example.com", "password123", code)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
}

func TestAuthService_Login_AdminStepUpAfterOtherPurposeCode(t *testing.T) {
	env := newTestEnv(t)
	env.withCooldown(time.Minute)
	ctx := context.Background()
	env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, false)

	require.NoError(t, env.otp.RequestOTP(ctx, "admin@example.com", models.PurposePasswordReset))
	resetCode := env.lastCode(t)
	env.clock.Advance(10 * time.Second)

	res, err := env.auth.Login(ctx, "admin@example.com", "password123", "")
	require.NoError(t, err)
	require.True(t, res.OTPRequired)
	require.Equal(t, 2, env.mailer.Count())
	adminCode := env.lastCode(t)

	record, err := env.records.Get(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, models.PurposeAdminLogin, record.Purpose)

	if resetCode != adminCode {
		_, err = env.auth.Login(ctx, "admin@example.com", "password123", resetCode)
		require.ErrorIs(t, err, ErrIncorrectCode)
	}
	res, err = env.auth.Login(ctx, "admin@example.com", "password123", adminCode)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, models.RoleAdmin, env.tokens.Validate(res.Token).Role)
}

func TestAuthService_Login_AdminStepUpNeedsPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, false)

	_, err := env.auth.Login(context.Background(), "admin@example.com", "bad-password", "123456")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, 0, env.mailer.Count())
}

func TestAuthService_PasswordlessLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "customer@example.com", "password123", models.RoleUser, false)
	env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, false)

	require.ErrorIs(t, env.auth.RequestLoginCode(ctx, "admin@example.com"), ErrPasswordRequired)
	require.ErrorIs(t, env.auth.RequestLoginCode(ctx, "ghost@example.com"), ErrNotRegistered)

	require.NoError(t, env.auth.RequestLoginCode(ctx, "customer@example.com"))
	res, err := env.auth.LoginWithOTP(ctx, "customer@example.com", env.lastCode(t))
	require.NoError(t, err)
	require.Equal(t, user.ID, env.tokens.Validate(res.Token).UID)
}

func TestAuthService_CompleteSignup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.otp.RequestOTP(ctx, "fresh@example.com", models.PurposeSignupVerification))
	v, err := env.otp.VerifyOTP(ctx, "fresh@example.com", env.lastCode(t), models.PurposeSignupVerification)
	require.NoError(t, err)

	_, err = env.auth.CompleteSignup(ctx, v.Ticket, "Fresh", "short")
	require.ErrorIs(t, err, ErrWeakPassword)

	res, err := env.auth.CompleteSignup(ctx, v.Ticket, " Fresh ", "longenough")
	require.NoError(t, err)
	require.Equal(t, "Fresh", res.User.Name)
	require.Equal(t, models.RoleUser, res.User.Role)
	require.NotNil(t, res.User.EmailVerifiedAt)
	require.NotNil(t, env.tokens.Validate(res.Token))

	_, err = env.auth.CompleteSignup(ctx, v.Ticket, "Again", "longenough")
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = env.auth.CompleteSignup(ctx, "not-a-ticket", "X", "longenough")
	require.ErrorIs(t, err, ErrInvalidTicket)
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "forgot@example.com", "old-password", models.RoleUser, false)

	require.NoError(t, env.otp.RequestOTP(ctx, "forgot@example.com", models.PurposePasswordReset))
	v, err := env.otp.VerifyOTP(ctx, "forgot@example.com", env.lastCode(t), models.PurposePasswordReset)
	require.NoError(t, err)

	// a signup ticket cannot reset a password
	_, err = env.otp.CheckTicket(v.Ticket, models.PurposeSignupVerification)
	require.ErrorIs(t, err, ErrInvalidTicket)

	require.NoError(t, env.auth.ResetPassword(ctx, v.Ticket, "new-password"))

	_, err = env.auth.Login(ctx, "forgot@example.com", "old-password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, "forgot@example.com", "new-password", "")
	require.NoError(t, err)
}

func TestAuthService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "staff@example.com", "password123", models.RoleUser, false)

	admin := models.RoleAdmin
	banned := true
	updated, err := env.auth.UpdateUser(ctx, user.ID, &admin, &banned)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, updated.Role)
	require.True(t, updated.Banned)

	bogus := models.Role("owner")
	_, err = env.auth.UpdateUser(ctx, user.ID, &bogus, nil)
	require.ErrorIs(t, err, ErrInvalidRole)

	_, err = env.auth.UpdateUser(ctx, "missing", nil, &banned)
	require.ErrorIs(t, err, ErrUserNotFound)

	users, err := env.auth.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}
