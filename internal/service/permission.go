package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/slugify"
)

// defaultPermissions is the catalog bootstrapped for every new client, in
// this exact creation order.
var defaultPermissions = []models.Permission{
	{Slug: "teams:create", Name: "Create Teams", Description: "Permission to create teams within workspaces"},
	{Slug: "teams:update", Name: "Update Teams"},
	{Slug: "teams:delete", Name: "Delete Teams"},
	{Slug: "teams:view", Name: "View Teams"},
	{Slug: "teamMembers:create", Name: "Create Team Members"},
	{Slug: "teamMembers:update", Name: "Update Team Members"},
	{Slug: "teamMembers:delete", Name: "Delete Team Members"},
	{Slug: "teamMembers:view", Name: "View Team Members", Description: "Permission to view and list team members"},
}

// bootstrapDefaultPermissions creates the default catalog for a client inside
// the caller's transaction.
func bootstrapDefaultPermissions(tx *gorm.DB, clientID uuid.UUID) error {
	for _, p := range defaultPermissions {
		perm := models.Permission{
			Name:        p.Name,
			Description: p.Description,
			Slug:        p.Slug,
			ClientID:    clientID,
		}
		if err := tx.Create(&perm).Error; err != nil {
			return fmt.Errorf("bootstrap permission %s: %w", p.Slug, err)
		}
	}
	return nil
}

// PermissionService contains the business logic for the permission catalog.
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// Create defines a permission for a client and attaches it to the
// Administrators team of every existing workspace of that client, so that
// administrators automatically gain newly defined capabilities.
//
// The permission itself is committed first (slug collision search and insert
// in one transaction). Propagation then runs per workspace with failure
// isolation: a failure on one workspace does not skip the rest and does not
// roll back the permission, but is surfaced as a *PropagationError.
func (s *PermissionService) Create(clientID uuid.UUID, req CreatePermissionRequest) (*models.Permission, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	var client models.Client
	if err := s.db.Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	base := req.Slug
	if base == "" {
		base = slugify.Derive(req.Name)
	}

	perm := models.Permission{
		Name:        req.Name,
		Description: req.Description,
		ClientID:    client.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var taken []string
		if err := tx.Model(&models.Permission{}).Where("client_id = ?", client.ID).Pluck("slug", &taken).Error; err != nil {
			return err
		}
		perm.Slug = slugify.Unique(base, taken)
		return tx.Create(&perm).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create permission: %w", err)
	}

	if err := s.propagateToAdministrators(&perm); err != nil {
		return &perm, err
	}
	return &perm, nil
}

// propagateToAdministrators attaches a permission to the Administrators team
// of every workspace of the permission's client. Failures are isolated per
// workspace and aggregated; a workspace without an Administrators team is a
// failure, never a silent skip.
func (s *PermissionService) propagateToAdministrators(perm *models.Permission) error {
	var workspaces []models.Workspace
	if err := s.db.Where("client_id = ?", perm.ClientID).Find(&workspaces).Error; err != nil {
		return &PropagationError{Err: err}
	}

	var failed []string
	var errs []error
	for i := range workspaces {
		ws := &workspaces[i]
		var admins models.Team
		err := s.db.Where("workspace_id = ? AND name = ?", ws.ID, models.AdministratorsTeamName).First(&admins).Error
		if err == nil {
			err = s.db.Model(&admins).Association("Permissions").Append(perm)
		}
		if err != nil {
			failed = append(failed, ws.ID.String())
			errs = append(errs, fmt.Errorf("workspace %s: %w", ws.ID, err))
			slog.Error("permission propagation failed", "permission", perm.Slug, "workspace", ws.ID, "error", err)
		}
	}

	if len(failed) > 0 {
		return &PropagationError{Failed: failed, Err: errors.Join(errs...)}
	}
	return nil
}

// List returns a client's permissions in the requested order: creation time
// descending for the administrative view, name ascending for profile views.
func (s *PermissionService) List(clientID uuid.UUID, order PermissionOrder) ([]models.Permission, error) {
	var exists int64
	if err := s.db.Model(&models.Client{}).Where("id = ?", clientID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	query := s.db.Where("client_id = ?", clientID)
	switch order {
	case OrderNameAsc:
		query = query.Order("name ASC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var permissions []models.Permission
	if err := query.Find(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}
