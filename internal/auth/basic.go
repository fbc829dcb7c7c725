package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// TokenDuration is the validity period for JWT tokens
const TokenDuration = 24 * time.Hour

// BasicAuthenticator implements username/password authentication with
// client-scoped JWT tokens
type BasicAuthenticator struct {
	db        *gorm.DB
	jwtSecret []byte
}

// NewBasicAuthenticator creates a new basic authenticator
func NewBasicAuthenticator(db *gorm.DB, jwtSecret string) *BasicAuthenticator {
	return &BasicAuthenticator{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches the hash
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Claims represents JWT claims. ClientID scopes every request made with the
// token to one tenant.
type Claims struct {
	UserID   string `json:"user_id"` // UUID stored as string
	Username string `json:"username"`
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// Login authenticates a user against a client and returns a JWT token
func (a *BasicAuthenticator) Login(req LoginRequest) (*LoginResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, ErrMissingClient
	}
	var client models.Client
	if err := a.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingClient
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if client.Revoked {
		return nil, ErrMissingClient
	}

	var user models.User
	result := a.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Warn("Login attempt with non-existent username", "username", req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", result.Error)
	}

	if !VerifyPassword(user.PasswordHash, req.Password) {
		slog.Warn("Login attempt with incorrect password", "username", req.Username)
		return nil, ErrInvalidCredentials
	}

	token, err := a.generateToken(&user, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	slog.Info("User logged in", "user_id", user.ID, "username", user.Username, "client_id", client.ID)
	return &LoginResponse{
		Token: token,
		User:  &user,
	}, nil
}

// generateToken creates a client-scoped JWT token for a user
func (a *BasicAuthenticator) generateToken(user *models.User, clientID uuid.UUID) (string, error) {
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		ClientID: clientID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gatehouse",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// validateToken validates a JWT token and returns claims
func (a *BasicAuthenticator) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrUnauthorized
}

// Middleware returns a Gin middleware that authenticates the request and
// resolves its (actor, client) identity. A valid token that carries no
// usable client context is a 400, not a 401: the bearer is who they claim
// to be but cannot establish a tenant.
func (a *BasicAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			// Fallback to query parameter (for EventSource/SSE compatibility)
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			c.Abort()
			return
		}

		identity, err := a.resolveIdentity(tokenString)
		if err != nil {
			if errors.Is(err, ErrMissingClient) {
				c.JSON(http.StatusBadRequest, gin.H{"error": ErrMissingClient.Error()})
			} else {
				slog.Warn("Invalid token", "error", err)
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			}
			c.Abort()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// resolveIdentity validates a JWT, loads the user, and resolves the client
// context the token is bound to.
func (a *BasicAuthenticator) resolveIdentity(tokenString string) (*Identity, error) {
	claims, err := a.validateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	var user models.User
	if result := a.db.First(&user, "id = ?", userID); result.Error != nil {
		return nil, fmt.Errorf("user not found: %w", result.Error)
	}

	if claims.ClientID == "" {
		return nil, ErrMissingClient
	}
	clientID, err := uuid.Parse(claims.ClientID)
	if err != nil {
		return nil, ErrMissingClient
	}
	var client models.Client
	if err := a.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMissingClient
		}
		return nil, err
	}
	if client.Revoked {
		return nil, ErrMissingClient
	}

	return &Identity{User: &user, ClientID: client.ID}, nil
}

// IdentityFromContext extracts the resolved identity from the Gin context
func (a *BasicAuthenticator) IdentityFromContext(c *gin.Context) (*Identity, error) {
	return IdentityFromContext(c)
}
