package config

// CookieConfig defines the security baseline for the session cookie issued by the server
type CookieConfig struct {
	// Name of the cookie carrying the session token
	Name string
	// Domain for the cookie, empty means host-only
	Domain string
	// Path scope of the cookie
	Path string
	// MaxAge in seconds
	MaxAge int
	// IsSecure indicates if the cookie should be marked as Secure (production only)
	IsSecure bool
	// HttpOnly keeps the cookie away from page scripts
	HttpOnly bool
}

// SessionCookie returns the cookie settings derived from the loaded configuration
func (c Config) SessionCookie() *CookieConfig {
	return &CookieConfig{
		Name:     "session",
		Domain:   c.CookieDomain,
		Path:     "/",
		MaxAge:   int(c.SessionTTL.Seconds()),
		IsSecure: c.IsProduction(),
		HttpOnly: true,
	}
}
