package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/repositories"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult carries either a session token or the signal that an
// administrator must finish the emailed step-up code first.
type LoginResult struct {
	OTPRequired bool
	User        *models.User
	Token       string
}

type AuthService struct {
	users             repositories.UserRepository
	otp               *OTPService
	tokens            *utils.TokenManager
	logger            *zap.Logger
	minPasswordLength int
}

func NewAuthService(users repositories.UserRepository, otp *OTPService, tokens *utils.TokenManager, logger *zap.Logger, minPasswordLength int) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minPasswordLength <= 0 {
		minPasswordLength = 8
	}
	return &AuthService{
		users:             users,
		otp:               otp,
		tokens:            tokens,
		logger:            logger,
		minPasswordLength: minPasswordLength,
	}
}

// Login checks the password. Administrators additionally need an admin_login
// code: without one a code is sent and OTPRequired is returned, no session.
func (s *AuthService) Login(ctx context.Context, email, password, otp string) (*LoginResult, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, storageError("load user", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}

	if user.IsAdmin() {
		if strings.TrimSpace(otp) == "" {
			err := s.otp.RequestOTP(ctx, user.Email, models.PurposeAdminLogin)
			// the cooldown only covers a pending admin_login code, which is still valid
			if err != nil && !errors.Is(err, ErrResendTooSoon) {
				return nil, err
			}
			return &LoginResult{OTPRequired: true, User: user}, nil
		}
		if _, err := s.otp.VerifyOTP(ctx, user.Email, otp, models.PurposeAdminLogin); err != nil {
			return nil, err
		}
	}

	return s.startSession(user)
}

// RequestLoginCode sends a passwordless login code to a customer account.
func (s *AuthService) RequestLoginCode(ctx context.Context, email string) error {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return storageError("load user", err)
	}
	if user.IsAdmin() {
		return ErrPasswordRequired
	}
	return s.otp.RequestOTP(ctx, normalized, models.PurposeLoginOTP)
}

// LoginWithOTP completes the passwordless flow.
func (s *AuthService) LoginWithOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	verification, err := s.otp.VerifyOTP(ctx, email, code, models.PurposeLoginOTP)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, verification.Identifier)
	if err != nil {
		return nil, storageError("load user", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	if user.IsAdmin() {
		return nil, ErrPasswordRequired
	}
	return s.startSession(user)
}

// CompleteSignup creates the account once the email has been verified.
func (s *AuthService) CompleteSignup(ctx context.Context, ticket, name, password string) (*LoginResult, error) {
	email, err := s.otp.CheckTicket(ticket, models.PurposeSignupVerification)
	if err != nil {
		return nil, err
	}
	if len(password) < s.minPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	verifiedAt := s.tokens.Signer.Now().UTC()
	user := &models.User{
		Email:           email,
		Name:            strings.TrimSpace(name),
		PasswordHash:    string(hash),
		Role:            models.RoleUser,
		EmailVerifiedAt: &verifiedAt,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrAlreadyRegistered
		}
		return nil, storageError("create user", err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.startSession(user)
}

// ResetPassword replaces the password hash once a password_reset ticket has been obtained.
func (s *AuthService) ResetPassword(ctx context.Context, ticket, password string) error {
	email, err := s.otp.CheckTicket(ticket, models.PurposePasswordReset)
	if err != nil {
		return err
	}
	if len(password) < s.minPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storageError("load user", err)
	}
	if user == nil {
		return ErrNotRegistered
	}
	if user.Banned {
		return ErrAccountBanned
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return storageError("update user", err)
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}

// UpdateUser changes role and/or ban status; nil fields are left untouched.
func (s *AuthService) UpdateUser(ctx context.Context, id string, role *models.Role, banned *bool) (*models.User, error) {
	if role != nil && !role.Valid() {
		return nil, ErrInvalidRole
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if role != nil {
		user.Role = *role
	}
	if banned != nil {
		user.Banned = *banned
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storageError("update user", err)
	}
	s.logger.Info("user updated",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("banned", user.Banned))
	return user, nil
}

func (s *AuthService) startSession(user *models.User) (*LoginResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Role, 0)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}
