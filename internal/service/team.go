package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/authz"
	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/slugify"
)

// TeamService contains the business logic for teams and their permission sets.
type TeamService struct {
	db    *gorm.DB
	authz *authz.Authorizer
}

// NewTeamService creates a new TeamService.
func NewTeamService(db *gorm.DB, az *authz.Authorizer) *TeamService {
	return &TeamService{db: db, authz: az}
}

// authorize loads a workspace and runs the decision procedure for an action
// on it, translating the decision into the service error taxonomy.
func (s *TeamService) authorize(actorID, clientID, workspaceID uuid.UUID, action string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.db.Where("id = ?", workspaceID).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	decision, err := s.authz.Can(actorID, clientID, &ws, action)
	if err != nil {
		return nil, err
	}
	switch decision {
	case authz.Allow:
		return &ws, nil
	case authz.DenyNotFound:
		return nil, ErrNotFound
	default:
		return nil, ErrForbidden
	}
}

// validatePermissionIDs ensures every given permission ID belongs to the
// workspace's client. Cross-client attachment is invalid input, reported as a
// validation error naming the offending field with no partial attachment.
func (s *TeamService) validatePermissionIDs(clientID uuid.UUID, ids []uuid.UUID) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var permissions []models.Permission
	if err := s.db.Where("id IN ? AND client_id = ?", ids, clientID).Find(&permissions).Error; err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]bool, len(permissions))
	for _, p := range permissions {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, &ValidationError{Field: "permission_ids", Message: fmt.Sprintf("permission %s does not belong to this client", id)}
		}
	}
	return permissions, nil
}

// Create creates a team in a workspace, optionally pre-attaching a permission
// set. Requires teams:create (or workspace ownership).
func (s *TeamService) Create(actorID, clientID, workspaceID uuid.UUID, req CreateTeamRequest) (*models.Team, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	ws, err := s.authorize(actorID, clientID, workspaceID, authz.ActionTeamsCreate)
	if err != nil {
		return nil, err
	}

	permissions, err := s.validatePermissionIDs(ws.ClientID, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	base := req.Slug
	if base == "" {
		base = slugify.Derive(req.Name)
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		WorkspaceID: ws.ID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var taken []string
		if err := tx.Model(&models.Team{}).Where("workspace_id = ?", ws.ID).Pluck("slug", &taken).Error; err != nil {
			return err
		}
		team.Slug = slugify.Unique(base, taken)
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("create team: %w", err)
		}
		if len(permissions) > 0 {
			if err := tx.Model(&team).Association("Permissions").Append(&permissions); err != nil {
				return fmt.Errorf("attach permissions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// Get returns a team with its permission set. Requires teams:view.
func (s *TeamService) Get(actorID, clientID, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	if err := s.db.Preload("Permissions").Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.authorize(actorID, clientID, team.WorkspaceID, authz.ActionTeamsView); err != nil {
		return nil, err
	}
	return &team, nil
}

// List returns all teams of a workspace. Requires teams:view.
func (s *TeamService) List(actorID, clientID, workspaceID uuid.UUID) ([]models.Team, error) {
	if _, err := s.authorize(actorID, clientID, workspaceID, authz.ActionTeamsView); err != nil {
		return nil, err
	}
	var teams []models.Team
	if err := s.db.Preload("Permissions").Where("workspace_id = ?", workspaceID).Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Update changes a team's display fields. Requires teams:update.
func (s *TeamService) Update(actorID, clientID, teamID uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	team, _, err := s.getForWrite(actorID, clientID, teamID, authz.ActionTeamsUpdate)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := s.db.Model(team).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return team, nil
}

// SyncPermissions replaces the team's entire permission set with exactly the
// given IDs. Not additive, idempotent. Requires teams:update.
func (s *TeamService) SyncPermissions(actorID, clientID, teamID uuid.UUID, permissionIDs []uuid.UUID) (*models.Team, error) {
	team, ws, err := s.getForWrite(actorID, clientID, teamID, authz.ActionTeamsUpdate)
	if err != nil {
		return nil, err
	}

	permissions, err := s.validatePermissionIDs(ws.ClientID, permissionIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(permissions) == 0 {
			return tx.Model(team).Association("Permissions").Clear()
		}
		return tx.Model(team).Association("Permissions").Replace(&permissions)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Permissions").First(team, "id = ?", team.ID).Error; err != nil {
		return nil, err
	}
	return team, nil
}

// Delete removes a team together with its members and permission
// attachments. Requires teams:delete.
func (s *TeamService) Delete(actorID, clientID, teamID uuid.UUID) error {
	team, _, err := s.getForWrite(actorID, clientID, teamID, authz.ActionTeamsDelete)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(team).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(team).Error
	})
}

// getForWrite loads a team and authorizes a write action against its
// workspace.
func (s *TeamService) getForWrite(actorID, clientID, teamID uuid.UUID, action string) (*models.Team, *models.Workspace, error) {
	var team models.Team
	if err := s.db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	ws, err := s.authorize(actorID, clientID, team.WorkspaceID, action)
	if err != nil {
		return nil, nil, err
	}
	return &team, ws, nil
}
