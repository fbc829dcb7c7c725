// Package authz implements the tenant-scoped authorization engine: a single
// decision procedure answering whether an actor may perform an action on a
// workspace (or a team within it) under the current client.
package authz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// Action slugs checked by the engine. These match the default permission
// catalog bootstrapped for every client.
const (
	ActionTeamsCreate   = "teams:create"
	ActionTeamsUpdate   = "teams:update"
	ActionTeamsDelete   = "teams:delete"
	ActionTeamsView     = "teams:view"
	ActionMembersCreate = "teamMembers:create"
	ActionMembersUpdate = "teamMembers:update"
	ActionMembersDelete = "teamMembers:delete"
	ActionMembersView   = "teamMembers:view"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow permits the action.
	Allow Decision = iota
	// DenyNotFound hides the resource entirely: it belongs to a different
	// client, so the caller must not learn that it exists.
	DenyNotFound
	// DenyForbidden refuses the action on an in-scope resource.
	DenyForbidden
)

// Decide evaluates the authorization rules in precedence order:
//
//  1. Workspace owners may do anything within their workspace.
//  2. A workspace outside the caller's client does not exist as far as the
//     caller is concerned.
//  3. An active team membership granting the action's slug allows it.
//  4. Otherwise the action is forbidden.
//
// granted is the set of permission slugs the actor holds through active
// memberships in teams of this workspace. Decide is pure so that the
// precedence order can be tested exhaustively.
func Decide(actorID uuid.UUID, clientID uuid.UUID, workspace *models.Workspace, granted map[string]bool, action string) Decision {
	if workspace.UserID == actorID {
		return Allow
	}
	if workspace.ClientID != clientID {
		return DenyNotFound
	}
	if granted[action] {
		return Allow
	}
	return DenyForbidden
}

// Authorizer answers authorization questions against the database.
type Authorizer struct {
	db *gorm.DB
}

// New creates an Authorizer.
func New(db *gorm.DB) *Authorizer {
	return &Authorizer{db: db}
}

// GrantedSlugs returns the permission slugs the actor holds in the workspace
// through active team memberships.
func (a *Authorizer) GrantedSlugs(actorID, workspaceID uuid.UUID) (map[string]bool, error) {
	var slugs []string
	err := a.db.Table("permissions").
		Joins("JOIN team_permissions ON team_permissions.permission_id = permissions.id").
		Joins("JOIN teams ON teams.id = team_permissions.team_id").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("teams.workspace_id = ?", workspaceID).
		Where("team_members.user_id = ? AND team_members.status = ?", actorID, models.MemberStatusActive).
		Distinct().
		Pluck("permissions.slug", &slugs).Error
	if err != nil {
		return nil, err
	}
	granted := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		granted[s] = true
	}
	return granted, nil
}

// Can runs the full decision procedure for an actor against a workspace.
func (a *Authorizer) Can(actorID, clientID uuid.UUID, workspace *models.Workspace, action string) (Decision, error) {
	// Owners and cross-client denials need no grant lookup.
	if d := Decide(actorID, clientID, workspace, nil, action); d != DenyForbidden {
		return d, nil
	}
	granted, err := a.GrantedSlugs(actorID, workspace.ID)
	if err != nil {
		return DenyForbidden, err
	}
	return Decide(actorID, clientID, workspace, granted, action), nil
}

// IsActiveMember reports whether the actor holds at least one active team
// membership anywhere in the workspace. Active members always see workspace
// basic info regardless of view permissions.
func (a *Authorizer) IsActiveMember(actorID, workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := a.db.Table("team_members").
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.workspace_id = ?", workspaceID).
		Where("team_members.user_id = ? AND team_members.status = ?", actorID, models.MemberStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
