package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/audit"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

type WorkspaceHandler struct {
	svc *service.WorkspaceService
	db  *gorm.DB
}

func NewWorkspaceHandler(svc *service.WorkspaceService, db *gorm.DB) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, db: db}
}

// CreateWorkspace godoc
// @Summary Create a workspace under the current client
// @Description Creates the workspace and provisions its Administrators team
// @Tags workspaces
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param workspace body CreateWorkspaceRequest true "Workspace details"
// @Success 201 {object} models.Workspace
// @Failure 400 {object} ErrorResponse
// @Router /workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ws, err := h.svc.Create(id.User.ID, id.ClientID, service.CreateWorkspaceRequest{Name: req.Name, Slug: req.Slug})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreateWorkspace, "workspace:"+ws.ID.String(), map[string]interface{}{
		"name": ws.Name,
		"slug": ws.Slug,
	})

	c.JSON(http.StatusCreated, ws)
}

// ListWorkspaces godoc
// @Summary List workspaces accessible to the current user
// @Description Owned workspaces plus those with an active team membership
// @Tags workspaces
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Workspace
// @Router /workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	workspaces, err := h.svc.ListAccessible(id.User.ID, id.ClientID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workspaces)
}

// GetWorkspace godoc
// @Summary Get a workspace by ID
// @Tags workspaces
// @Security BearerAuth
// @Param id path string true "Workspace UUID"
// @Success 200 {object} models.Workspace
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{id} [get]
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	wsID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ws, err := h.svc.Get(id.User.ID, id.ClientID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

// DeleteWorkspace godoc
// @Summary Delete a workspace (owner only)
// @Tags workspaces
// @Security BearerAuth
// @Param id path string true "Workspace UUID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{id} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	wsID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id.User.ID, id.ClientID, wsID); err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionDeleteWorkspace, "workspace:"+wsID.String(), nil)
	c.Status(http.StatusNoContent)
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}
