package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/internal/auth"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleServiceError maps service-layer errors to HTTP status codes.
// NotFound covers both absent resources and resources under another client;
// Forbidden is reserved for in-client authorization failures; InvalidState
// is a 400 distinct from validation errors.
func handleServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Error()})
		return
	}
	var stateErr *service.InvalidStateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: stateErr.Message})
		return
	}
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictErr.Message})
		return
	}
	slog.Error("unhandled service error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}

// identity pulls the resolved (actor, client) pair set by the auth
// middleware, aborting with 401 when absent.
func identity(c *gin.Context) (*auth.Identity, bool) {
	id, err := auth.IdentityFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return nil, false
	}
	return id, true
}

// pathUUID parses a UUID path parameter, aborting with 400 on bad input.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
