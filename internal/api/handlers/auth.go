package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse-dev/gatehouse/internal/auth"
)

// Login godoc
// @Summary User login
// @Description Authenticate user and return a client-scoped JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func Login(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		resp, err := authenticator.Login(req)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
				return
			}
			if errors.Is(err, auth.ErrMissingClient) {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// GetCurrentUser godoc
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func GetCurrentUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      id.User,
		"client_id": id.ClientID,
	})
}
