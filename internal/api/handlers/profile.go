package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse-dev/gatehouse/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GetProfile godoc
// @Summary Get the current user's full profile for this client
// @Description Accessible workspaces with view-shaped teams and members, pending invitations, and the client permission catalog
// @Tags profile
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Profile
// @Failure 401 {object} ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	profile, err := h.svc.Assemble(id.User.ID, id.ClientID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
