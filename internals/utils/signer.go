package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error Verify returns. Callers cannot tell a
// forged token from an expired or malformed one.
var ErrInvalidToken = errors.New("invalid or expired token")

// Token types carried in the "typ" claim. All of them share one secret, so
// every reader checks the type before trusting the other claims.
const (
	TokenTypeSession   = "session"
	TokenTypeCaptcha   = "captcha"
	TokenTypeOTPTicket = "otp_ticket"
)

// Strict so that flipping the unused trailing bits of the last character
// cannot produce a second valid spelling of the same signature.
var encoding = base64.RawURLEncoding.Strict()

// Signer produces "payload.signature" tokens: base64url JSON followed by a
// base64url HMAC-SHA256 of the encoded payload.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner copies the secret. A nil clock means time.Now.
func NewSigner(secret []byte, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{secret: key, now: now}
}

// Now is the clock every token expiry is measured against.
func (s *Signer) Now() time.Time {
	return s.now()
}

func (s *Signer) Sign(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	encoded := encoding.EncodeToString(raw)
	sig, err := jwt.SigningMethodHS256.Sign(encoded, s.secret)
	if err != nil {
		return "", err
	}
	return encoded + "." + encoding.EncodeToString(sig), nil
}

// Verify checks the signature and the "exp" claim, then decodes the payload into dst.
func (s *Signer) Verify(token string, dst any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ErrInvalidToken
	}
	sig, err := encoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}
	// SigningMethodHMAC.Verify compares with hmac.Equal
	if err := jwt.SigningMethodHS256.Verify(parts[0], sig, s.secret); err != nil {
		return ErrInvalidToken
	}

	raw, err := encoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var expiry struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(raw, &expiry); err != nil {
		return ErrInvalidToken
	}
	if expiry.Exp <= s.now().Unix() {
		return ErrInvalidToken
	}
	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			return ErrInvalidToken
		}
	}
	return nil
}
