package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/repositories"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"go.uber.org/zap"
)

const otpLength = 6

type OTPOptions struct {
	AppName string
	// TTL applies to every purpose except password reset, which uses ResetTTL
	TTL      time.Duration
	ResetTTL time.Duration
	// ResendCooldown is the minimum age of a live record before a request for the
	// same purpose may replace it; zero disables it
	ResendCooldown time.Duration
	// MaxAttempts wrong submissions discard the code; zero means unlimited
	MaxAttempts int
	// PurgeGrace keeps recently expired records long enough to answer "expired"
	PurgeGrace time.Duration
	// VerifiedWindow bounds how long a verification ticket is honoured
	VerifiedWindow time.Duration
}

func DefaultOTPOptions() OTPOptions {
	return OTPOptions{
		AppName:        "Clothing Shop",
		TTL:            10 * time.Minute,
		ResetTTL:       15 * time.Minute,
		ResendCooldown: 0,
		MaxAttempts:    5,
		PurgeGrace:     time.Hour,
		VerifiedWindow: 10 * time.Minute,
	}
}

// OTPVerification is returned after a code has been consumed. Ticket lets a
// follow-up step (set a password, create the account) prove the verification
// until TicketExpiresAt, independent of the code's own expiry.
type OTPVerification struct {
	Identifier      string
	Purpose         models.OTPPurpose
	VerifiedAt      time.Time
	Ticket          string
	TicketExpiresAt time.Time
}

type ticketClaims struct {
	Typ     string            `json:"typ"`
	Sub     string            `json:"sub"`
	Purpose models.OTPPurpose `json:"purpose"`
	Exp     int64             `json:"exp"`
}

// OTPService drives one code lifecycle shared by every purpose:
// none -> pending -> consumed | expired, where a new request replaces a pending code.
type OTPService struct {
	users   repositories.UserRepository
	records repositories.OTPRepository
	mailer  utils.Mailer
	signer  *utils.Signer
	logger  *zap.Logger
	opts    OTPOptions
}

func NewOTPService(users repositories.UserRepository, records repositories.OTPRepository, mailer utils.Mailer, signer *utils.Signer, logger *zap.Logger, opts OTPOptions) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPService{
		users:   users,
		records: records,
		mailer:  mailer,
		signer:  signer,
		logger:  logger,
		opts:    opts,
	}
}

// NormalizeEmail lower-cases and trims identifier and rejects anything that is not a bare address.
func NormalizeEmail(identifier string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(identifier))
	if email == "" || len(email) > 320 {
		return "", ErrInvalidIdentifier
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@'):], ".") {
		return "", ErrInvalidIdentifier
	}
	return email, nil
}

func (s *OTPService) ttl(purpose models.OTPPurpose) time.Duration {
	if purpose == models.PurposePasswordReset {
		return s.opts.ResetTTL
	}
	return s.opts.TTL
}

// RequestOTP stores a fresh code for identifier and emails it. The code is never returned.
func (s *OTPService) RequestOTP(ctx context.Context, identifier string, purpose models.OTPPurpose) error {
	email, err := NormalizeEmail(identifier)
	if err != nil {
		return err
	}
	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	if err := s.checkEligibility(ctx, email, purpose); err != nil {
		return err
	}

	now := s.signer.Now()
	if s.opts.ResendCooldown > 0 {
		existing, err := s.records.Get(ctx, email)
		if err != nil {
			return storageError("load otp", err)
		}
		if existing != nil && existing.Purpose == purpose &&
			!existing.Expired(now) && now.Before(existing.CreatedAt.Add(s.opts.ResendCooldown)) {
			return ErrResendTooSoon
		}
	}

	code, err := utils.GenerateNumericCode(otpLength)
	if err != nil {
		return err
	}
	ttl := s.ttl(purpose)
	record := &models.OTPRecord{
		Identifier: email,
		Code:       code,
		Purpose:    purpose,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	// stored before sending, and withdrawn again if the email cannot go out
	if err := s.records.Upsert(ctx, record); err != nil {
		return storageError("store otp", err)
	}

	subject, body := utils.OTPEmail(s.opts.AppName, purpose, code, ttl)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Error("otp email delivery failed",
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		if _, derr := s.records.Consume(ctx, email, code); derr != nil {
			s.logger.Warn("undelivered otp left in place", zap.Error(derr))
		}
		return deliveryError(err)
	}

	s.logger.Info("otp issued",
		zap.String("purpose", string(purpose)),
		zap.Time("expires_at", record.ExpiresAt))
	return nil
}

// checkEligibility runs before any code exists, so a banned account never receives one.
func (s *OTPService) checkEligibility(ctx context.Context, email string, purpose models.OTPPurpose) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storageError("load user", err)
	}
	if purpose == models.PurposeSignupVerification {
		if user != nil {
			return ErrAlreadyRegistered
		}
		return nil
	}
	if user == nil {
		return ErrNotRegistered
	}
	if user.Banned {
		return ErrAccountBanned
	}
	return nil
}

// VerifyOTP consumes the code for identifier. A record issued for a different
// purpose is treated as absent and left in place for its own flow.
func (s *OTPService) VerifyOTP(ctx context.Context, identifier, code string, purpose models.OTPPurpose) (*OTPVerification, error) {
	email, err := NormalizeEmail(identifier)
	if err != nil {
		return nil, err
	}
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose
	}
	now := s.signer.Now()

	if n, err := s.records.DeleteExpired(ctx, now.Add(-s.opts.PurgeGrace)); err != nil {
		s.logger.Warn("otp purge failed", zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("otp purge", zap.Int64("deleted", n))
	}

	record, err := s.records.Get(ctx, email)
	if err != nil {
		return nil, storageError("load otp", err)
	}
	if record == nil || record.Purpose != purpose {
		return nil, ErrNoActiveCode
	}
	if record.Expired(now) {
		if err := s.records.Delete(ctx, email); err != nil {
			return nil, storageError("delete otp", err)
		}
		return nil, ErrCodeExpired
	}

	submitted := utils.DigitsOnly(code)
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(record.Code)) != 1 {
		return nil, s.failAttempt(ctx, email, record)
	}

	consumed, err := s.records.Consume(ctx, email, record.Code)
	if err != nil {
		return nil, storageError("consume otp", err)
	}
	if !consumed {
		// replaced or consumed by a concurrent request
		return nil, ErrNoActiveCode
	}

	ticketExp := now.Add(s.opts.VerifiedWindow)
	ticket, err := s.signer.Sign(ticketClaims{Typ: utils.TokenTypeOTPTicket, Sub: email, Purpose: purpose, Exp: ticketExp.Unix()})
	if err != nil {
		return nil, err
	}

	s.logger.Info("otp verified", zap.String("purpose", string(purpose)))
	return &OTPVerification{
		Identifier:      email,
		Purpose:         purpose,
		VerifiedAt:      now,
		Ticket:          ticket,
		TicketExpiresAt: ticketExp,
	}, nil
}

// failAttempt charges a wrong submission to record and discards the code once
// MaxAttempts is reached. The caller always sees ErrIncorrectCode.
func (s *OTPService) failAttempt(ctx context.Context, email string, record *models.OTPRecord) error {
	attempts, err := s.records.AddFailedAttempt(ctx, email, record.Code)
	if err != nil {
		return storageError("count otp attempt", err)
	}
	if s.opts.MaxAttempts > 0 && attempts >= s.opts.MaxAttempts {
		if _, err := s.records.Consume(ctx, email, record.Code); err != nil {
			return storageError("discard otp", err)
		}
		s.logger.Warn("otp discarded after too many attempts",
			zap.String("purpose", string(record.Purpose)),
			zap.Int("attempts", attempts))
	}
	return ErrIncorrectCode
}

// CheckTicket returns the verified identifier if ticket is live and was issued for purpose.
func (s *OTPService) CheckTicket(ticket string, purpose models.OTPPurpose) (string, error) {
	var claims ticketClaims
	if err := s.signer.Verify(ticket, &claims); err != nil {
		if errors.Is(err, utils.ErrInvalidToken) {
			return "", ErrInvalidTicket
		}
		return "", err
	}
	if claims.Typ != utils.TokenTypeOTPTicket || claims.Sub == "" || claims.Purpose != purpose {
		return "", ErrInvalidTicket
	}
	return claims.Sub, nil
}

// PurgeExpired removes records that expired more than PurgeGrace ago.
func (s *OTPService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.records.DeleteExpired(ctx, s.signer.Now().Add(-s.opts.PurgeGrace))
	if err != nil {
		return 0, storageError("purge otp", err)
	}
	return n, nil
}
