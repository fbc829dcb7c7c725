package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// OIDCAuthenticator provides generic OIDC authentication. Token issuance and
// request resolution are delegated to the embedded BasicAuthenticator; OIDC
// only replaces how the user proves who they are.
type OIDCAuthenticator struct {
	provider  *oidc.Provider
	config    *oauth2.Config
	verifier  *oidc.IDTokenVerifier
	db        *gorm.DB
	basicAuth *BasicAuthenticator
}

// OIDCConfig holds OIDC configuration
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// NewOIDCAuthenticator creates a new OIDC authenticator
func NewOIDCAuthenticator(ctx context.Context, cfg OIDCConfig, db *gorm.DB, jwtSecret string) (*OIDCAuthenticator, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})

	return &OIDCAuthenticator{
		provider:  provider,
		config:    oauth2Config,
		verifier:  verifier,
		db:        db,
		basicAuth: NewBasicAuthenticator(db, jwtSecret),
	}, nil
}

// AuthCodeURL returns the provider URL to redirect the user to.
func (a *OIDCAuthenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// oidcClaims are the ID token claims we consume
type oidcClaims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
}

// HandleCallback exchanges an authorization code, verifies the ID token,
// finds or creates the matching user, and issues a client-scoped JWT.
func (a *OIDCAuthenticator) HandleCallback(ctx context.Context, code string, clientID uuid.UUID) (*LoginResponse, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token in token response")
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	if claims.Email == "" {
		return nil, errors.New("ID token has no email claim")
	}

	user, err := a.findOrCreateUser(claims)
	if err != nil {
		return nil, err
	}

	jwtToken, err := a.basicAuth.generateToken(user, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{Token: jwtToken, User: user}, nil
}

// findOrCreateUser maps an OIDC identity onto a local user row by email.
func (a *OIDCAuthenticator) findOrCreateUser(claims oidcClaims) (*models.User, error) {
	var user models.User
	err := a.db.Where("email = ?", claims.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}
	user = models.User{
		Username:     username,
		Email:        claims.Email,
		PasswordHash: "!oidc", // never matches a bcrypt hash
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user from OIDC identity: %w", err)
	}
	return &user, nil
}

// Login delegates to password authentication. OIDC sessions are established
// via the callback flow instead.
func (a *OIDCAuthenticator) Login(req LoginRequest) (*LoginResponse, error) {
	return a.basicAuth.Login(req)
}

// Middleware returns a Gin middleware for authentication
func (a *OIDCAuthenticator) Middleware() gin.HandlerFunc {
	return a.basicAuth.Middleware()
}

// IdentityFromContext extracts the resolved identity from the Gin context
func (a *OIDCAuthenticator) IdentityFromContext(c *gin.Context) (*Identity, error) {
	return IdentityFromContext(c)
}
