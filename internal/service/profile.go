package service

import (
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/authz"
	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// ProfileService assembles the per-client profile view for a user.
type ProfileService struct {
	db          *gorm.DB
	authz       *authz.Authorizer
	workspaces  *WorkspaceService
	permissions *PermissionService
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *gorm.DB, az *authz.Authorizer, ws *WorkspaceService, perms *PermissionService) *ProfileService {
	return &ProfileService{db: db, authz: az, workspaces: ws, permissions: perms}
}

// Assemble builds the actor's profile for the current client: accessible
// workspaces with view-shaped team and member lists, pending invitations,
// and the client's permission catalog ordered by name.
//
// Shaping rules: workspace basic info is always visible to owners and active
// members; the nested teams list is populated only when the viewer holds
// teams:view for that workspace, and each team's member list only when
// teamMembers:view is additionally held. Withheld lists are empty, not
// omitted.
func (p *ProfileService) Assemble(actorID, clientID uuid.UUID) (*Profile, error) {
	var (
		workspaces  []models.Workspace
		invitations []models.TeamMember
		permissions []models.Permission
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		workspaces, err = p.workspaces.ListAccessible(actorID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		invitations, err = p.pendingInvitations(actorID, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		permissions, err = p.permissions.List(clientID, OrderNameAsc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]WorkspaceView, 0, len(workspaces))
	for i := range workspaces {
		view, err := p.shapeWorkspace(actorID, &workspaces[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return &Profile{
		Workspaces:         views,
		PendingInvitations: invitations,
		ClientPermissions:  permissions,
	}, nil
}

// shapeWorkspace applies the view-shaping rules for one workspace.
func (p *ProfileService) shapeWorkspace(actorID uuid.UUID, ws *models.Workspace) (*WorkspaceView, error) {
	view := &WorkspaceView{Workspace: *ws, Teams: make([]TeamView, 0)}

	owner := ws.UserID == actorID
	granted := map[string]bool{}
	if !owner {
		var err error
		granted, err = p.authz.GrantedSlugs(actorID, ws.ID)
		if err != nil {
			return nil, err
		}
	}

	if !owner && !granted[authz.ActionTeamsView] {
		return view, nil
	}

	var teams []models.Team
	if err := p.db.Preload("Permissions").Where("workspace_id = ?", ws.ID).Order("created_at ASC").Find(&teams).Error; err != nil {
		return nil, err
	}

	showMembers := owner || granted[authz.ActionMembersView]
	for i := range teams {
		tv := TeamView{Team: teams[i], Members: make([]models.TeamMember, 0)}
		if showMembers {
			if err := p.db.Preload("User").Where("team_id = ?", teams[i].ID).Order("created_at ASC").Find(&tv.Members).Error; err != nil {
				return nil, err
			}
		}
		view.Teams = append(view.Teams, tv)
	}
	return view, nil
}

// pendingInvitations returns the actor's pending memberships across the
// current client, joined through team and workspace. Pending rows confer no
// workspace access; they appear only here.
func (p *ProfileService) pendingInvitations(actorID, clientID uuid.UUID) ([]models.TeamMember, error) {
	var memberIDs []uuid.UUID
	err := p.db.Table("team_members").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Joins("JOIN workspaces ON workspaces.id = teams.workspace_id").
		Where("team_members.user_id = ? AND team_members.status = ?", actorID, models.MemberStatusPending).
		Where("workspaces.client_id = ?", clientID).
		Pluck("team_members.id", &memberIDs).Error
	if err != nil {
		return nil, err
	}

	invitations := make([]models.TeamMember, 0, len(memberIDs))
	if len(memberIDs) == 0 {
		return invitations, nil
	}
	if err := p.db.Preload("Team").Where("id IN ?", memberIDs).Order("created_at ASC").Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}
