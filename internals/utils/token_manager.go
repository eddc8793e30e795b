package utils

import (
	"net/http"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/config"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"github.com/gin-gonic/gin"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims is the payload carried by the session cookie. The role is a
// snapshot taken at issue time; storage stays authoritative.
type SessionClaims struct {
	Typ   string      `json:"typ"`
	UID   string      `json:"uid"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Exp   int64       `json:"exp"`
}

// TokenManager handles session token generation, validation, and cookie management
type TokenManager struct {
	// Signer holds the process-wide secret
	Signer *Signer
	// CookieConfig holds the cookie attributes for the session cookie
	CookieConfig *config.CookieConfig
	// TTL is how long an issued session stays valid
	TTL time.Duration
}

// NewTokenManager initializes and returns a new TokenManager instance
func NewTokenManager(signer *Signer, cookieConfig *config.CookieConfig, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenManager{
		Signer:       signer,
		CookieConfig: cookieConfig,
		TTL:          ttl,
	}
}

// Issue signs a session token for the user. A ttl of zero uses the manager default.
func (tm *TokenManager) Issue(uid, email string, role models.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = tm.TTL
	}
	return tm.Signer.Sign(SessionClaims{
		Typ:   TokenTypeSession,
		UID:   uid,
		Email: email,
		Role:  role,
		Exp:   tm.Signer.Now().Add(ttl).Unix(),
	})
}

// Validate returns nil for any token that is not a live session token.
func (tm *TokenManager) Validate(token string) *SessionClaims {
	if token == "" {
		return nil
	}
	var claims SessionClaims
	if err := tm.Signer.Verify(token, &claims); err != nil {
		return nil
	}
	if claims.Typ != TokenTypeSession || claims.UID == "" || !claims.Role.Valid() {
		return nil
	}
	return &claims
}

func (tm *TokenManager) ReadSessionCookie(c *gin.Context) string {
	value, err := c.Cookie(tm.CookieConfig.Name)
	if err != nil {
		return ""
	}
	return value
}

// SetSessionCookie writes the session token as an HttpOnly, SameSite=Lax cookie
func (tm *TokenManager) SetSessionCookie(c *gin.Context, token string) {
	cc := tm.CookieConfig
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, token, cc.MaxAge, cc.Path, cc.Domain, cc.IsSecure, cc.HttpOnly)
}

// ClearSessionCookie overwrites the cookie with an empty value; a negative
// max age is rendered by net/http as "Max-Age=0".
func (tm *TokenManager) ClearSessionCookie(c *gin.Context) {
	cc := tm.CookieConfig
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, "", -1, cc.Path, cc.Domain, cc.IsSecure, cc.HttpOnly)
}
