package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/authz"
	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// MemberService implements the team membership and invitation lifecycle.
type MemberService struct {
	db    *gorm.DB
	authz *authz.Authorizer
}

// NewMemberService creates a new MemberService.
func NewMemberService(db *gorm.DB, az *authz.Authorizer) *MemberService {
	return &MemberService{db: db, authz: az}
}

// Create adds a member to a team, either as a registered user or as an email
// invitation. Requires teamMembers:create or workspace ownership.
//
// When an email is supplied and a user with that email already exists, the
// row is created with the resolved user ID and a null email. Resolution does
// not activate the membership: it still starts pending unless a status was
// explicitly passed.
func (m *MemberService) Create(actorID, clientID, teamID uuid.UUID, req CreateMemberRequest) (*models.TeamMember, error) {
	team, ws, err := m.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if err := m.decide(actorID, clientID, ws, authz.ActionMembersCreate); err != nil {
		return nil, err
	}

	if (req.UserID == nil) == (req.Email == "") {
		return nil, &ValidationError{Message: "exactly one of user_id and email must be supplied"}
	}

	status := req.Status
	if status == "" {
		status = models.MemberStatusPending
	}
	if status != models.MemberStatusPending && status != models.MemberStatusActive {
		return nil, &ValidationError{Field: "status", Message: "status must be pending or active"}
	}

	member := models.TeamMember{
		TeamID: team.ID,
		Status: status,
	}

	switch {
	case req.UserID != nil:
		var user models.User
		if err := m.db.Where("id = ?", *req.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &ValidationError{Field: "user_id", Message: "user does not exist"}
			}
			return nil, err
		}
		member.UserID = &user.ID

	default:
		// Resolve known emails to their user immediately; the email is
		// cleared and only the user ID is stored.
		var user models.User
		err := m.db.Where("email = ?", req.Email).First(&user).Error
		switch {
		case err == nil:
			member.UserID = &user.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			email := req.Email
			member.Email = &email
		default:
			return nil, err
		}
	}

	if err := m.checkDuplicate(team.ID, &member); err != nil {
		return nil, err
	}

	if err := m.db.Create(&member).Error; err != nil {
		// The unique indexes are the authoritative guard; a concurrent
		// insert can beat the pre-check. Re-check to report it as the same
		// validation error rather than a storage error.
		if dupErr := m.checkDuplicate(team.ID, &member); dupErr != nil {
			return nil, dupErr
		}
		return nil, fmt.Errorf("create team member: %w", err)
	}
	return &member, nil
}

// checkDuplicate reports a validation error if the team already has a member
// with the candidate's user ID or email.
func (m *MemberService) checkDuplicate(teamID uuid.UUID, candidate *models.TeamMember) error {
	var count int64
	if candidate.UserID != nil {
		if err := m.db.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ? AND id != ?", teamID, *candidate.UserID, candidate.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &ValidationError{Field: "user_id", Message: "user is already a member of this team"}
		}
		return nil
	}
	if err := m.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND email = ? AND id != ?", teamID, *candidate.Email, candidate.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ValidationError{Field: "email", Message: "this email is already invited to this team"}
	}
	return nil
}

// List returns a team's members. Requires teamMembers:view.
func (m *MemberService) List(actorID, clientID, teamID uuid.UUID) ([]models.TeamMember, error) {
	_, ws, err := m.loadTeam(teamID)
	if err != nil {
		return nil, err
	}
	if err := m.decide(actorID, clientID, ws, authz.ActionMembersView); err != nil {
		return nil, err
	}
	var members []models.TeamMember
	if err := m.db.Preload("User").Where("team_id = ?", teamID).Order("created_at ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Accept transitions a pending membership to active. Only the invited user
// may accept, and only from the pending state.
func (m *MemberService) Accept(actorID, clientID, memberID uuid.UUID) (*models.TeamMember, error) {
	member, _, err := m.loadMember(clientID, memberID)
	if err != nil {
		return nil, err
	}
	if member.UserID == nil || *member.UserID != actorID {
		return nil, ErrForbidden
	}
	if member.Status != models.MemberStatusPending {
		return nil, &InvalidStateError{Message: "only pending invitations can be accepted"}
	}
	if err := m.db.Model(member).Update("status", models.MemberStatusActive).Error; err != nil {
		return nil, err
	}
	member.Status = models.MemberStatusActive
	return member, nil
}

// Reject deletes a pending membership. Only the invited user may reject, and
// only from the pending state.
func (m *MemberService) Reject(actorID, clientID, memberID uuid.UUID) error {
	member, _, err := m.loadMember(clientID, memberID)
	if err != nil {
		return err
	}
	if member.UserID == nil || *member.UserID != actorID {
		return ErrForbidden
	}
	if member.Status != models.MemberStatusPending {
		return &InvalidStateError{Message: "only pending invitations can be rejected"}
	}
	return m.db.Delete(member).Error
}

// Remove deletes a membership in any status. Allowed for callers holding
// teamMembers:delete, the workspace owner, or the member removing themself.
func (m *MemberService) Remove(actorID, clientID, memberID uuid.UUID) error {
	member, ws, err := m.loadMember(clientID, memberID)
	if err != nil {
		return err
	}

	self := member.UserID != nil && *member.UserID == actorID
	if !self {
		if err := m.decide(actorID, clientID, ws, authz.ActionMembersDelete); err != nil {
			return err
		}
	}
	return m.db.Delete(member).Error
}

// loadTeam fetches a team and its workspace.
func (m *MemberService) loadTeam(teamID uuid.UUID) (*models.Team, *models.Workspace, error) {
	var team models.Team
	if err := m.db.Where("id = ?", teamID).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	var ws models.Workspace
	if err := m.db.Where("id = ?", team.WorkspaceID).First(&ws).Error; err != nil {
		return nil, nil, err
	}
	return &team, &ws, nil
}

// loadMember fetches a member with its team and workspace, applying the
// tenant boundary: a member under another client's workspace does not exist
// for the caller.
func (m *MemberService) loadMember(clientID, memberID uuid.UUID) (*models.TeamMember, *models.Workspace, error) {
	var member models.TeamMember
	if err := m.db.Where("id = ?", memberID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	_, ws, err := m.loadTeam(member.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if ws.ClientID != clientID {
		return nil, nil, ErrNotFound
	}
	return &member, ws, nil
}

// decide translates an authorization decision into the service error
// taxonomy, returning nil on Allow.
func (m *MemberService) decide(actorID, clientID uuid.UUID, ws *models.Workspace, action string) error {
	decision, err := m.authz.Can(actorID, clientID, ws, action)
	if err != nil {
		return err
	}
	switch decision {
	case authz.Allow:
		return nil
	case authz.DenyNotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}
