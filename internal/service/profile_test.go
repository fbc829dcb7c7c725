package service

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

func profileFixture(t *testing.T) (*ProfileService, *gorm.DB, *models.Client) {
	t.Helper()
	db := testDB(t)
	az := newAuthz(db)
	client := createTestClient(t, db, "acme-portal")

	wsSvc := NewWorkspaceService(db, az)
	permSvc := NewPermissionService(db)
	return NewProfileService(db, az, wsSvc, permSvc), db, client
}

func TestProfileOwnerSeesEverything(t *testing.T) {
	svc, db, client := profileFixture(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")

	ws, err := svc.workspaces.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Engineering"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	admins := adminsTeam(t, db, ws.ID)
	addMember(t, db, admins.ID, member.ID, models.MemberStatusActive)

	profile, err := svc.Assemble(owner.ID, client.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(profile.Workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(profile.Workspaces))
	}
	view := profile.Workspaces[0]
	if len(view.Teams) != 1 {
		t.Fatalf("expected 1 team in view, got %d", len(view.Teams))
	}
	if len(view.Teams[0].Members) != 1 {
		t.Fatalf("expected member list visible to owner, got %d members", len(view.Teams[0].Members))
	}
}

func TestProfileShapingWithoutTeamsView(t *testing.T) {
	svc, db, client := profileFixture(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")

	ws, err := svc.workspaces.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Engineering"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	// Active member of a permissionless team: the workspace is listed but
	// its teams are withheld.
	teamSvc := NewTeamService(db, svc.authz)
	bare, err := teamSvc.Create(owner.ID, client.ID, ws.ID, CreateTeamRequest{Name: "Bare"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	addMember(t, db, bare.ID, member.ID, models.MemberStatusActive)

	profile, err := svc.Assemble(member.ID, client.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(profile.Workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(profile.Workspaces))
	}
	view := profile.Workspaces[0]
	if view.Teams == nil {
		t.Fatal("withheld teams list must be empty, not nil")
	}
	if len(view.Teams) != 0 {
		t.Fatalf("expected teams withheld without teams:view, got %d", len(view.Teams))
	}
}

func TestProfileShapingTeamsWithoutMembers(t *testing.T) {
	svc, db, client := profileFixture(t)
	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")

	ws, err := svc.workspaces.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Engineering"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	teamSvc := NewTeamService(db, svc.authz)
	view := permissionBySlug(t, db, client.ID, "teams:view")
	viewers, err := teamSvc.Create(owner.ID, client.ID, ws.ID, CreateTeamRequest{
		Name:          "Viewers",
		PermissionIDs: []uuid.UUID{view.ID},
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	addMember(t, db, viewers.ID, member.ID, models.MemberStatusActive)

	profile, err := svc.Assemble(member.ID, client.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(profile.Workspaces) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(profile.Workspaces))
	}
	wsView := profile.Workspaces[0]

	// Administrators + Viewers are visible, but member lists stay empty
	// without teamMembers:view.
	if len(wsView.Teams) != 2 {
		t.Fatalf("expected 2 teams visible, got %d", len(wsView.Teams))
	}
	for _, tv := range wsView.Teams {
		if tv.Members == nil {
			t.Fatal("withheld member list must be empty, not nil")
		}
		if len(tv.Members) != 0 {
			t.Fatalf("expected members withheld without teamMembers:view, got %d", len(tv.Members))
		}
	}
}

func TestProfilePendingInvitations(t *testing.T) {
	svc, db, client := profileFixture(t)
	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")

	ws, err := svc.workspaces.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Engineering"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	admins := adminsTeam(t, db, ws.ID)
	addMember(t, db, admins.ID, invitee.ID, models.MemberStatusPending)

	// An invitation under a different client stays invisible here.
	otherClient := createTestClient(t, db, "other-portal")
	otherWs, err := svc.workspaces.Create(owner.ID, otherClient.ID, CreateWorkspaceRequest{Name: "Elsewhere"})
	if err != nil {
		t.Fatalf("create other workspace: %v", err)
	}
	addMember(t, db, adminsTeam(t, db, otherWs.ID).ID, invitee.ID, models.MemberStatusPending)

	profile, err := svc.Assemble(invitee.ID, client.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(profile.Workspaces) != 0 {
		t.Fatalf("pending membership must not surface the workspace, got %d", len(profile.Workspaces))
	}
	if len(profile.PendingInvitations) != 1 {
		t.Fatalf("expected 1 pending invitation, got %d", len(profile.PendingInvitations))
	}
	if profile.PendingInvitations[0].TeamID != admins.ID {
		t.Fatal("expected the invitation into the administrators team")
	}
}

func TestProfilePermissionCatalogOrdered(t *testing.T) {
	svc, db, client := profileFixture(t)
	user := createTestUser(t, db, "user")

	profile, err := svc.Assemble(user.ID, client.ID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	perms := profile.ClientPermissions
	if len(perms) != 8 {
		t.Fatalf("expected the 8 default permissions, got %d", len(perms))
	}
	if !sort.SliceIsSorted(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name }) {
		t.Error("expected catalog sorted by name ascending")
	}
}
