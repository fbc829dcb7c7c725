package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/audit"
	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

type MemberHandler struct {
	svc *service.MemberService
	db  *gorm.DB
}

func NewMemberHandler(svc *service.MemberService, db *gorm.DB) *MemberHandler {
	return &MemberHandler{svc: svc, db: db}
}

// CreateMember godoc
// @Summary Add a member or invite an email address to a team
// @Tags members
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Team UUID"
// @Param member body CreateMemberRequest true "Member details"
// @Success 201 {object} models.TeamMember
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id}/members [post]
func (h *MemberHandler) CreateMember(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	member, err := h.svc.Create(id.User.ID, id.ClientID, teamID, service.CreateMemberRequest{
		UserID: req.UserID,
		Email:  req.Email,
		Status: models.MemberStatus(req.Status),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreateMember, "team_member:"+member.ID.String(), map[string]interface{}{
		"team_id": teamID,
		"status":  member.Status,
	})

	c.JSON(http.StatusCreated, member)
}

// ListMembers godoc
// @Summary List a team's members
// @Tags members
// @Security BearerAuth
// @Param id path string true "Team UUID"
// @Success 200 {array} models.TeamMember
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /teams/{id}/members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	teamID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	members, err := h.svc.List(id.User.ID, id.ClientID, teamID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AcceptInvitation godoc
// @Summary Accept a pending invitation
// @Description Only the invited user may accept, and only while pending
// @Tags members
// @Security BearerAuth
// @Param id path string true "Team member UUID"
// @Success 200 {object} models.TeamMember
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /members/{id}/accept [post]
func (h *MemberHandler) AcceptInvitation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	member, err := h.svc.Accept(id.User.ID, id.ClientID, memberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionAcceptInvitation, "team_member:"+member.ID.String(), nil)
	c.JSON(http.StatusOK, member)
}

// RejectInvitation godoc
// @Summary Reject a pending invitation
// @Description Only the invited user may reject, and only while pending
// @Tags members
// @Security BearerAuth
// @Param id path string true "Team member UUID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /members/{id}/reject [post]
func (h *MemberHandler) RejectInvitation(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reject(id.User.ID, id.ClientID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionRejectInvitation, "team_member:"+memberID.String(), nil)
	c.Status(http.StatusNoContent)
}

// RemoveMember godoc
// @Summary Remove a member from a team
// @Description Requires teamMembers:delete, workspace ownership, or self-removal
// @Tags members
// @Security BearerAuth
// @Param id path string true "Team member UUID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /members/{id} [delete]
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	memberID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Remove(id.User.ID, id.ClientID, memberID); err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionRemoveMember, "team_member:"+memberID.String(), nil)
	c.Status(http.StatusNoContent)
}

type CreateMemberRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Email  string     `json:"email"`
	Status string     `json:"status"`
}
