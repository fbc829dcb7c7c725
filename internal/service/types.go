package service

import (
	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// CreateClientRequest holds parameters for registering a client.
type CreateClientRequest struct {
	Name   string
	Secret string
}

// CreatePermissionRequest holds parameters for defining a permission.
// Slug is derived from Name when empty.
type CreatePermissionRequest struct {
	Name        string
	Slug        string
	Description string
}

// PermissionOrder selects the listing order for permissions.
type PermissionOrder int

const (
	// OrderCreatedDesc is the administrative listing order.
	OrderCreatedDesc PermissionOrder = iota
	// OrderNameAsc is the order surfaced on user profiles.
	OrderNameAsc
)

// CreateWorkspaceRequest holds parameters for creating a workspace.
// Slug is derived from Name when empty.
type CreateWorkspaceRequest struct {
	Name string
	Slug string
}

// CreateTeamRequest holds parameters for creating a team.
type CreateTeamRequest struct {
	Name          string
	Description   string
	Slug          string
	PermissionIDs []uuid.UUID
}

// UpdateTeamRequest holds parameters for updating a team's display fields.
type UpdateTeamRequest struct {
	Name        string
	Description string
}

// CreateMemberRequest holds parameters for adding a member or inviting an
// email address. Exactly one of UserID/Email must be set. Status defaults to
// pending when empty.
type CreateMemberRequest struct {
	UserID *uuid.UUID
	Email  string
	Status models.MemberStatus
}

// WorkspaceView is a workspace as seen by a particular user, with the nested
// teams and member lists shaped by that user's view permissions.
type WorkspaceView struct {
	Workspace models.Workspace `json:"workspace"`
	Teams     []TeamView       `json:"teams"`
}

// TeamView is a team with its member list, which is empty unless the viewer
// holds teamMembers:view for the workspace.
type TeamView struct {
	Team    models.Team         `json:"team"`
	Members []models.TeamMember `json:"members"`
}

// Profile aggregates everything shown on a user's profile for the current
// client: accessible workspaces (owned or active membership), pending
// invitations, and the client's permission catalog.
type Profile struct {
	Workspaces         []WorkspaceView     `json:"workspaces"`
	PendingInvitations []models.TeamMember `json:"pending_invitations"`
	ClientPermissions  []models.Permission `json:"client_permissions"`
}
