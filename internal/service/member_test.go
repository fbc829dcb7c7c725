package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

func memberFixture(t *testing.T) (*MemberService, *models.Client, *models.User, *models.Team) {
	t.Helper()
	db := testDB(t)
	az := newAuthz(db)
	client := createTestClient(t, db, "acme-portal")
	owner := createTestUser(t, db, "owner")

	ws, err := NewWorkspaceService(db, az).Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Engineering"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	team, err := NewTeamService(db, az).Create(owner.ID, client.ID, ws.ID, CreateTeamRequest{Name: "Developers"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return NewMemberService(db, az), client, owner, team
}

func TestCreateMemberByUserID(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if member.Status != models.MemberStatusPending {
		t.Fatalf("expected pending status by default, got %q", member.Status)
	}
	if member.UserID == nil || *member.UserID != invitee.ID {
		t.Fatal("expected member bound to the invited user")
	}
}

func TestCreateMemberResolvesKnownEmail(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{Email: invitee.Email})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if member.UserID == nil || *member.UserID != invitee.ID {
		t.Fatal("expected email to resolve to the existing user")
	}
	if member.Email != nil {
		t.Fatalf("expected email cleared after resolution, got %q", *member.Email)
	}
	if member.Status != models.MemberStatusPending {
		t.Fatalf("resolution must not activate the membership, got %q", member.Status)
	}
}

func TestCreateMemberUnknownEmailKeepsEmail(t *testing.T) {
	svc, client, owner, team := memberFixture(t)

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	if member.UserID != nil {
		t.Fatal("expected no user binding for unknown email")
	}
	if member.Email == nil || *member.Email != "new@example.com" {
		t.Fatal("expected email to be stored for unknown address")
	}
}

func TestCreateMemberExactlyOneIdentifier(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	cases := []CreateMemberRequest{
		{},
		{UserID: &invitee.ID, Email: invitee.Email},
	}
	for _, req := range cases {
		_, err := svc.Create(owner.ID, client.ID, team.ID, req)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %+v, got %v", req, err)
		}
	}
}

func TestCreateMemberUnknownUser(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	ghost := uuid.New()

	_, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &ghost})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown user, got %v", err)
	}
}

func TestCreateMemberInvalidStatus(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	_, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID, Status: "removed"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for bad status, got %v", err)
	}

	// An explicit active status skips the invitation step.
	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID, Status: models.MemberStatusActive})
	if err != nil {
		t.Fatalf("create active member: %v", err)
	}
	if member.Status != models.MemberStatusActive {
		t.Fatalf("expected active, got %q", member.Status)
	}
}

func TestCreateMemberDuplicate(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	if _, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID}); err != nil {
		t.Fatalf("create member: %v", err)
	}
	_, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for duplicate user, got %v", err)
	}

	if _, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{Email: "dup@example.com"}); err != nil {
		t.Fatalf("create email member: %v", err)
	}
	_, err = svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{Email: "dup@example.com"})
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for duplicate email, got %v", err)
	}
}

func TestCreateMemberRequiresGrant(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	db := svc.db
	outsider := createTestUser(t, db, "outsider")
	invitee := createTestUser(t, db, "invitee")

	_, err := svc.Create(outsider.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without teamMembers:create, got %v", err)
	}

	// The owner always may.
	if _, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID}); err != nil {
		t.Fatalf("owner create: %v", err)
	}
}

func TestAcceptInvitation(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	accepted, err := svc.Accept(invitee.ID, client.ID, member.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != models.MemberStatusActive {
		t.Fatalf("expected active after accept, got %q", accepted.Status)
	}

	// Accepting twice fails on state, not on authorization.
	_, err = svc.Accept(invitee.ID, client.ID, member.ID)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError on second accept, got %v", err)
	}

	var reloaded models.TeamMember
	if err := svc.db.First(&reloaded, "id = ?", member.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.MemberStatusActive {
		t.Fatalf("row must stay active after failed transition, got %q", reloaded.Status)
	}
}

func TestAcceptOnlyByInvitee(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	// Not even the owner can accept on the invitee's behalf. The actor
	// check fires before the state check.
	if _, err := svc.Accept(owner.ID, client.ID, member.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-invitee, got %v", err)
	}

	var reloaded models.TeamMember
	if err := svc.db.First(&reloaded, "id = ?", member.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.MemberStatusPending {
		t.Fatalf("row must stay pending after denied accept, got %q", reloaded.Status)
	}
}

func TestAcceptEmailInvitationForbidden(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	actor := createTestUser(t, svc.db, "actor")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{Email: "new@example.com"})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	// An unresolved email row has no invitee to act for it.
	if _, err := svc.Accept(actor.ID, client.ID, member.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unresolved invitation, got %v", err)
	}
}

func TestRejectInvitation(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := svc.Reject(invitee.ID, client.ID, member.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	err = svc.db.First(&models.TeamMember{}, "id = ?", member.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected row deleted after reject, got %v", err)
	}

	// A fresh invitation for the same user is possible afterwards.
	if _, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID}); err != nil {
		t.Fatalf("re-invite after reject: %v", err)
	}
}

func TestRejectActiveMembership(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID, Status: models.MemberStatusActive})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	err = svc.Reject(invitee.ID, client.ID, member.ID)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}

	// The membership survives.
	if err := svc.db.First(&models.TeamMember{}, "id = ?", member.ID).Error; err != nil {
		t.Fatalf("expected row to survive failed reject: %v", err)
	}
}

func TestRemoveSelfAlwaysAllowed(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID, Status: models.MemberStatusActive})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := svc.Remove(invitee.ID, client.ID, member.ID); err != nil {
		t.Fatalf("self-removal: %v", err)
	}

	err = svc.db.First(&models.TeamMember{}, "id = ?", member.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected row deleted, got %v", err)
	}
}

func TestRemoveRequiresGrant(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	db := svc.db
	invitee := createTestUser(t, db, "invitee")
	outsider := createTestUser(t, db, "outsider")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if err := svc.Remove(outsider.ID, client.ID, member.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}

	// The workspace owner may remove members in any status.
	if err := svc.Remove(owner.ID, client.ID, member.ID); err != nil {
		t.Fatalf("owner removal: %v", err)
	}
}

func TestMemberHiddenAcrossClients(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	otherClient := createTestClient(t, svc.db, "other-portal")
	invitee := createTestUser(t, svc.db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if _, err := svc.Accept(invitee.ID, otherClient.ID, member.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across clients, got %v", err)
	}
	if err := svc.Remove(invitee.ID, otherClient.ID, member.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across clients, got %v", err)
	}
}

func TestListMembersRequiresView(t *testing.T) {
	svc, client, owner, team := memberFixture(t)
	db := svc.db
	invitee := createTestUser(t, db, "invitee")

	member, err := svc.Create(owner.ID, client.ID, team.ID, CreateMemberRequest{UserID: &invitee.ID, Status: models.MemberStatusActive})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	// Active membership alone does not include teamMembers:view.
	if _, err := svc.List(invitee.ID, client.ID, team.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden without teamMembers:view, got %v", err)
	}

	members, err := svc.List(owner.ID, client.ID, team.ID)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(members) != 1 || members[0].ID != member.ID {
		t.Fatalf("expected the one member, got %v", members)
	}
}
