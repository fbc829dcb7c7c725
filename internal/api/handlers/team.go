package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/audit"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

type TeamHandler struct {
	svc *service.TeamService
	db  *gorm.DB
}

func NewTeamHandler(svc *service.TeamService, db *gorm.DB) *TeamHandler {
	return &TeamHandler{svc: svc, db: db}
}

// CreateTeam godoc
// @Summary Create a team in a workspace
// @Tags teams
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Workspace UUID"
// @Param team body CreateTeamRequest true "Team details"
// @Success 201 {object} models.Team
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{id}/teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	wsID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	team, err := h.svc.Create(id.User.ID, id.ClientID, wsID, service.CreateTeamRequest{
		Name:          req.Name,
		Description:   req.Description,
		Slug:          req.Slug,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreateTeam, "team:"+team.ID.String(), map[string]interface{}{
		"name":         team.Name,
		"workspace_id": wsID,
	})

	c.JSON(http.StatusCreated, team)
}

// ListTeams godoc
// @Summary List teams of a workspace
// @Tags teams
// @Security BearerAuth
// @Param id path string true "Workspace UUID"
// @Success 200 {array} models.Team
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /workspaces/{id}/teams [get]
func (h *TeamHandler) ListTeams(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	wsID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	teams, err := h.svc.List(id.User.ID, id.ClientID, wsID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, teams)
}

// GetTeam godoc
// @Summary Get a team with its permission set
// @Tags teams
// @Security BearerAuth
// @Param id path string true "Team UUID"
// @Success 200 {object} models.Team
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id} [get]
func (h *TeamHandler) GetTeam(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	team, err := h.svc.Get(id.User.ID, id.ClientID, teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// UpdateTeam godoc
// @Summary Update a team's name or description
// @Tags teams
// @Security BearerAuth
// @Accept json
// @Param id path string true "Team UUID"
// @Param team body UpdateTeamRequest true "Fields to update"
// @Success 200 {object} models.Team
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id} [patch]
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	team, err := h.svc.Update(id.User.ID, id.ClientID, teamID, service.UpdateTeamRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionUpdateTeam, "team:"+team.ID.String(), req)
	c.JSON(http.StatusOK, team)
}

// SyncTeamPermissions godoc
// @Summary Replace a team's permission set
// @Description Replaces the entire set with exactly the given permission IDs; idempotent
// @Tags teams
// @Security BearerAuth
// @Accept json
// @Param id path string true "Team UUID"
// @Param permissions body SyncPermissionsRequest true "Permission IDs"
// @Success 200 {object} models.Team
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id}/permissions [put]
func (h *TeamHandler) SyncTeamPermissions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req SyncPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	team, err := h.svc.SyncPermissions(id.User.ID, id.ClientID, teamID, req.PermissionIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionSyncPermissions, "team:"+team.ID.String(), map[string]interface{}{
		"permission_ids": req.PermissionIDs,
	})
	c.JSON(http.StatusOK, team)
}

// DeleteTeam godoc
// @Summary Delete a team and its members
// @Tags teams
// @Security BearerAuth
// @Param id path string true "Team UUID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id} [delete]
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(id.User.ID, id.ClientID, teamID); err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionDeleteTeam, "team:"+teamID.String(), nil)
	c.Status(http.StatusNoContent)
}

// Request types
type CreateTeamRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   string      `json:"description"`
	Slug          string      `json:"slug"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SyncPermissionsRequest struct {
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}
