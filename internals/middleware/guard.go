package middleware

import (
	"errors"
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/repositories"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const IdentityKey = "identity"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("admin access required")
)

// Identity is the caller as currently recorded in storage.
type Identity struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
}

// Guard resolves the session cookie to a live user. The role inside the
// token is ignored; every call re-reads the user so demotions and bans
// apply to tokens that are still unexpired.
type Guard struct {
	Users  repositories.UserRepository
	Tokens *utils.TokenManager
	Logger *zap.Logger
}

func NewGuard(users repositories.UserRepository, tokens *utils.TokenManager, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{Users: users, Tokens: tokens, Logger: logger}
}

// CurrentIdentity returns (nil, nil) for anonymous callers, invalid tokens,
// deleted users and banned users. The error is reserved for storage failures.
func (g *Guard) CurrentIdentity(c *gin.Context) (*Identity, error) {
	claims := g.Tokens.Validate(g.Tokens.ReadSessionCookie(c))
	if claims == nil {
		return nil, nil
	}
	user, err := g.Users.GetByID(c.Request.Context(), claims.UID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Banned {
		return nil, nil
	}
	return &Identity{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

func (g *Guard) RequireAdmin(c *gin.Context) (*Identity, error) {
	identity, err := g.CurrentIdentity(c)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	if identity.Role != models.RoleAdmin {
		return identity, ErrForbidden
	}
	return identity, nil
}

// RequireAuth aborts with 401 unless the request carries a live session.
func (g *Guard) RequireAuth(c *gin.Context) {
	identity, err := g.CurrentIdentity(c)
	if err != nil {
		g.abortInternal(c, err)
		return
	}
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": ErrUnauthenticated.Error()})
		return
	}
	c.Set(IdentityKey, identity)
	c.Next()
}

// RequireAdminRole aborts with 401 for anonymous callers and 403 for non-admins.
func (g *Guard) RequireAdminRole(c *gin.Context) {
	identity, err := g.RequireAdmin(c)
	switch {
	case errors.Is(err, ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": err.Error()})
		return
	case errors.Is(err, ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": err.Error()})
		return
	case err != nil:
		g.abortInternal(c, err)
		return
	}
	c.Set(IdentityKey, identity)
	c.Next()
}

func (g *Guard) abortInternal(c *gin.Context, err error) {
	g.Logger.Error("identity lookup failed", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "message": "could not verify session"})
}

// IdentityFrom returns the identity stored by RequireAuth or RequireAdminRole.
func IdentityFrom(c *gin.Context) *Identity {
	value, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := value.(*Identity)
	return identity
}
