package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/audit"
	"github.com/gatehouse-dev/gatehouse/internal/auth"
	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/rbac"
	"github.com/gatehouse-dev/gatehouse/internal/service"
)

// AdminHandler exposes the system-operator surface: client registration, the
// permission catalog, user management, and audit logs.
type AdminHandler struct {
	db          *gorm.DB
	clients     *service.ClientService
	permissions *service.PermissionService
}

func NewAdminHandler(db *gorm.DB, clients *service.ClientService, permissions *service.PermissionService) *AdminHandler {
	return &AdminHandler{db: db, clients: clients, permissions: permissions}
}

// CreateClient godoc
// @Summary Register an OAuth2 client (admin only)
// @Description Creates a client and bootstraps its default permission catalog
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param client body CreateClientRequest true "Client details"
// @Success 201 {object} models.Client
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/clients [post]
func (h *AdminHandler) CreateClient(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	client, err := h.clients.Create(service.CreateClientRequest{Name: req.Name, Secret: req.Secret})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreateClient, "client:"+client.ID.String(), map[string]interface{}{
		"name": client.Name,
	})

	c.JSON(http.StatusCreated, client)
}

// ListClients godoc
// @Summary List registered clients (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Client
// @Router /admin/clients [get]
func (h *AdminHandler) ListClients(c *gin.Context) {
	clients, err := h.clients.List()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get a client by ID (admin only)
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Client UUID"
// @Success 200 {object} models.Client
// @Failure 404 {object} ErrorResponse
// @Router /admin/clients/{id} [get]
func (h *AdminHandler) GetClient(c *gin.Context) {
	clientID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.Get(clientID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete a client and everything scoped to it (admin only)
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Client UUID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/clients/{id} [delete]
func (h *AdminHandler) DeleteClient(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	clientID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(clientID); err != nil {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionDeleteClient, "client:"+clientID.String(), nil)
	c.Status(http.StatusNoContent)
}

// CreatePermission godoc
// @Summary Define a permission for a client (admin only)
// @Description Creates the permission and propagates it to every existing workspace's Administrators team
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client UUID"
// @Param permission body CreatePermissionRequest true "Permission details"
// @Success 201 {object} models.Permission
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/clients/{id}/permissions [post]
func (h *AdminHandler) CreatePermission(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	clientID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	perm, err := h.permissions.Create(clientID, service.CreatePermissionRequest{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})

	var propErr *service.PropagationError
	if err != nil && !errors.As(err, &propErr) {
		handleServiceError(c, err)
		return
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreatePermission, "permission:"+perm.ID.String(), map[string]interface{}{
		"slug":      perm.Slug,
		"client_id": clientID,
	})

	// The permission is durable even when fan-out to some Administrators
	// teams failed; report the partial failure alongside it.
	if propErr != nil {
		c.JSON(http.StatusCreated, gin.H{
			"permission":        perm,
			"warning":           propErr.Error(),
			"failed_workspaces": propErr.Failed,
		})
		return
	}
	c.JSON(http.StatusCreated, perm)
}

// ListClientPermissions godoc
// @Summary List a client's permissions, newest first (admin only)
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Client UUID"
// @Success 200 {array} models.Permission
// @Failure 404 {object} ErrorResponse
// @Router /admin/clients/{id}/permissions [get]
func (h *AdminHandler) ListClientPermissions(c *gin.Context) {
	clientID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	permissions, err := h.permissions.List(clientID, service.OrderCreatedDesc)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, permissions)
}

// ListUsers godoc
// @Summary List all users (admin only)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} UserWithAdminStatus
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch users"})
		return
	}

	adminUserIDs, err := rbac.GetAllAdminUserIDs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to check admin status"})
		return
	}

	usersWithStatus := make([]UserWithAdminStatus, len(users))
	for i, user := range users {
		usersWithStatus[i] = UserWithAdminStatus{
			User:    user,
			IsAdmin: adminUserIDs[user.ID],
		}
	}

	c.JSON(http.StatusOK, usersWithStatus)
}

// CreateUser godoc
// @Summary Create a new user (admin only)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User details"
// @Success 201 {object} models.User
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create user"})
		return
	}

	if req.IsAdmin {
		if err := rbac.MakeAdmin(user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to grant admin permissions"})
			return
		}
	}

	audit.LogAction(h.db, id.User.ID, audit.ActionCreateUser, "user:"+user.ID.String(), map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
		"is_admin": req.IsAdmin,
	})

	c.JSON(http.StatusCreated, user)
}

// ListAuditLogs godoc
// @Summary List audit log entries, newest first (admin only)
// @Tags admin
// @Security BearerAuth
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {array} models.AuditLog
// @Router /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	var logs []models.AuditLog
	if err := h.db.Preload("User").Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch audit logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Request types
type CreateClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

type UserWithAdminStatus struct {
	models.User
	IsAdmin bool `json:"is_admin"`
}
