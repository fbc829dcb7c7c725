package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	// ErrMissingClient indicates a token without an associated client, or a
	// client that is unknown or revoked. The caller gets a bad-request
	// response: such a token cannot establish a tenant context at all.
	ErrMissingClient = errors.New("token has no associated client")
)

// IdentityContextKey is the key used to store the resolved identity in the
// Gin context
const IdentityContextKey = "identity"

// Identity is the resolved (actor, client) pair for a request. Every
// operation below the auth layer trusts this resolution completely.
type Identity struct {
	User     *models.User
	ClientID uuid.UUID
}

// LoginRequest represents a login request. ClientID names the OAuth client
// the issued token will be scoped to.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Authenticator is an interface for authentication providers
type Authenticator interface {
	// Login authenticates a user and returns a JWT token scoped to a client
	Login(req LoginRequest) (*LoginResponse, error)

	// Middleware returns a Gin middleware that resolves the request identity
	Middleware() gin.HandlerFunc

	// IdentityFromContext extracts the resolved identity from the Gin context
	IdentityFromContext(c *gin.Context) (*Identity, error)
}

// IdentityFromContext extracts the resolved identity from the Gin context.
func IdentityFromContext(c *gin.Context) (*Identity, error) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, ErrUnauthorized
	}
	identity, ok := value.(*Identity)
	if !ok {
		return nil, errors.New("invalid identity in context")
	}
	return identity, nil
}
