package utils

import (
	"crypto/subtle"
	"time"
)

const (
	DefaultCaptchaLength = 5
	DefaultCaptchaTTL    = 5 * time.Minute
	CaptchaTypeNumeric   = "numeric"
)

// CaptchaChallenge is what the client receives. The code itself only exists
// inside the signed token and as drawn strokes in the SVG.
type CaptchaChallenge struct {
	SVG    string `json:"svg"`
	Token  string `json:"token"`
	Length int    `json:"length"`
	Type   string `json:"type"`
}

type captchaClaims struct {
	Typ  string `json:"typ"`
	Code string `json:"code"`
	Exp  int64  `json:"exp"`
}

// CaptchaManager issues and checks stateless numeric challenges. A token and
// its code verify as many times as they are presented until the token expires.
type CaptchaManager struct {
	Signer *Signer
	Length int
	TTL    time.Duration
}

func NewCaptchaManager(signer *Signer, length int, ttl time.Duration) *CaptchaManager {
	if length <= 0 {
		length = DefaultCaptchaLength
	}
	if ttl <= 0 {
		ttl = DefaultCaptchaTTL
	}
	return &CaptchaManager{Signer: signer, Length: length, TTL: ttl}
}

func (m *CaptchaManager) Issue() (*CaptchaChallenge, error) {
	code, err := GenerateNumericCode(m.Length)
	if err != nil {
		return nil, err
	}
	token, err := m.Signer.Sign(captchaClaims{
		Typ:  TokenTypeCaptcha,
		Code: code,
		Exp:  m.Signer.Now().Add(m.TTL).Unix(),
	})
	if err != nil {
		return nil, err
	}
	svg, err := RenderCaptcha(code)
	if err != nil {
		return nil, err
	}
	return &CaptchaChallenge{
		SVG:    svg,
		Token:  token,
		Length: len(code),
		Type:   CaptchaTypeNumeric,
	}, nil
}

// Verify reports whether submitted matches the code sealed in token.
// Bad signatures, expiry and wrong answers all return false.
func (m *CaptchaManager) Verify(token, submitted string) bool {
	var claims captchaClaims
	if err := m.Signer.Verify(token, &claims); err != nil || claims.Typ != TokenTypeCaptcha {
		return false
	}
	want := DigitsOnly(claims.Code)
	got := DigitsOnly(submitted)
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
