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

// WorkspaceService contains the business logic for workspace operations.
type WorkspaceService struct {
	db    *gorm.DB
	authz *authz.Authorizer
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(db *gorm.DB, az *authz.Authorizer) *WorkspaceService {
	return &WorkspaceService{db: db, authz: az}
}

// Create creates a workspace for the actor under the current client and
// provisions its Administrators team holding the client's full current
// permission set. Workspace, team, and attachments are committed in one
// transaction: a workspace is never observable without its Administrators
// team.
func (s *WorkspaceService) Create(actorID, clientID uuid.UUID, req CreateWorkspaceRequest) (*models.Workspace, error) {
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

	ws := models.Workspace{
		Name:     req.Name,
		UserID:   actorID,
		ClientID: client.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var taken []string
		if err := tx.Model(&models.Workspace{}).Where("client_id = ?", client.ID).Pluck("slug", &taken).Error; err != nil {
			return err
		}
		ws.Slug = slugify.Unique(base, taken)
		if err := tx.Create(&ws).Error; err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
		return provisionAdministratorsTeam(tx, &ws)
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// provisionAdministratorsTeam creates the default Administrators team for a
// freshly created workspace and grants it every permission currently defined
// for the workspace's client. Runs inside the workspace-creation transaction.
func provisionAdministratorsTeam(tx *gorm.DB, ws *models.Workspace) error {
	team := models.Team{
		Name:        models.AdministratorsTeamName,
		Slug:        slugify.Derive(models.AdministratorsTeamName),
		WorkspaceID: ws.ID,
	}
	if err := tx.Create(&team).Error; err != nil {
		return fmt.Errorf("provision administrators team: %w", err)
	}

	var permissions []models.Permission
	if err := tx.Where("client_id = ?", ws.ClientID).Find(&permissions).Error; err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}
	if err := tx.Model(&team).Association("Permissions").Append(&permissions); err != nil {
		return fmt.Errorf("attach default permissions: %w", err)
	}
	return nil
}

// Get returns a workspace by ID, applying the tenant boundary: a workspace
// under a different client is reported as not found, while an in-client
// workspace the actor cannot access is forbidden. Owners and active members
// of any team in the workspace may see it.
func (s *WorkspaceService) Get(actorID, clientID, workspaceID uuid.UUID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.db.Preload("User").Where("id = ?", workspaceID).First(&ws).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ws.UserID == actorID {
		return &ws, nil
	}
	if ws.ClientID != clientID {
		return nil, ErrNotFound
	}
	active, err := s.authz.IsActiveMember(actorID, ws.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrForbidden
	}
	return &ws, nil
}

// ListAccessible returns the workspaces the actor can access under the
// current client: those they own plus those where they hold an active team
// membership, deduplicated. A pending-only relationship grants no access.
func (s *WorkspaceService) ListAccessible(actorID, clientID uuid.UUID) ([]models.Workspace, error) {
	var memberWorkspaceIDs []uuid.UUID
	err := s.db.Table("team_members").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND team_members.status = ?", actorID, models.MemberStatusActive).
		Distinct().
		Pluck("teams.workspace_id", &memberWorkspaceIDs).Error
	if err != nil {
		return nil, err
	}

	query := s.db.Where("client_id = ?", clientID)
	if len(memberWorkspaceIDs) > 0 {
		query = query.Where("user_id = ? OR id IN ?", actorID, memberWorkspaceIDs)
	} else {
		query = query.Where("user_id = ?", actorID)
	}

	var workspaces []models.Workspace
	if err := query.Preload("User").Order("created_at DESC").Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

// Delete removes a workspace and its teams, members, and permission
// attachments. Only the owner may delete a workspace.
func (s *WorkspaceService) Delete(actorID, clientID, workspaceID uuid.UUID) error {
	ws, err := s.Get(actorID, clientID, workspaceID)
	if err != nil {
		return err
	}
	if ws.UserID != actorID {
		return ErrForbidden
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteWorkspaceTree(tx, ws.ID)
	})
}
