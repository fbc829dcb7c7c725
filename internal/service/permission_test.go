package service

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

func TestCreatePermissionDerivesSlug(t *testing.T) {
	db := testDB(t)
	client := createTestClient(t, db, "acme-portal")

	perm, err := NewPermissionService(db).Create(client.ID, CreatePermissionRequest{Name: "Deploy Code"})
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}
	if perm.Slug != "deploy-code" {
		t.Fatalf("expected slug deploy-code, got %q", perm.Slug)
	}
}

func TestCreatePermissionSuffixesTakenSlug(t *testing.T) {
	db := testDB(t)
	client := createTestClient(t, db, "acme-portal")
	svc := NewPermissionService(db)

	first, err := svc.Create(client.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(client.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	third, err := svc.Create(client.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create third: %v", err)
	}

	if first.Slug != "audit" || second.Slug != "audit-2" || third.Slug != "audit-3" {
		t.Fatalf("expected audit, audit-2, audit-3; got %q, %q, %q", first.Slug, second.Slug, third.Slug)
	}
}

func TestCreatePermissionSlugsScopedPerClient(t *testing.T) {
	db := testDB(t)
	clientA := createTestClient(t, db, "client-a")
	clientB := createTestClient(t, db, "client-b")
	svc := NewPermissionService(db)

	permA, err := svc.Create(clientA.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create for client A: %v", err)
	}
	permB, err := svc.Create(clientB.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create for client B: %v", err)
	}

	// Same slug on both sides: catalogs do not interfere across clients.
	if permA.Slug != "audit" || permB.Slug != "audit" {
		t.Fatalf("expected audit for both clients, got %q and %q", permA.Slug, permB.Slug)
	}
}

func TestCreatePermissionUnknownClient(t *testing.T) {
	db := testDB(t)

	_, err := NewPermissionService(db).Create(uuid.New(), CreatePermissionRequest{Name: "Audit"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePermissionPropagatesToAdministrators(t *testing.T) {
	db := testDB(t)
	az := newAuthz(db)
	client := createTestClient(t, db, "acme-portal")
	owner := createTestUser(t, db, "owner")

	wsSvc := NewWorkspaceService(db, az)
	wsA, err := wsSvc.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Alpha"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	wsB, err := wsSvc.Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Beta"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}

	perm, err := NewPermissionService(db).Create(client.ID, CreatePermissionRequest{Name: "Audit"})
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}

	for _, wsID := range []uuid.UUID{wsA.ID, wsB.ID} {
		admins := adminsTeam(t, db, wsID)
		if len(admins.Permissions) != 9 {
			t.Fatalf("expected 9 permissions on administrators team, got %d", len(admins.Permissions))
		}
		found := false
		for _, p := range admins.Permissions {
			if p.ID == perm.ID {
				found = true
			}
		}
		if !found {
			t.Errorf("new permission not attached to administrators team of workspace %s", wsID)
		}
	}
}

func TestCreatePermissionDoesNotTouchOtherTeams(t *testing.T) {
	db := testDB(t)
	az := newAuthz(db)
	client := createTestClient(t, db, "acme-portal")
	owner := createTestUser(t, db, "owner")

	ws, err := NewWorkspaceService(db, az).Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Alpha"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	team, err := NewTeamService(db, az).Create(owner.ID, client.ID, ws.ID, CreateTeamRequest{Name: "Developers"})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	if _, err := NewPermissionService(db).Create(client.ID, CreatePermissionRequest{Name: "Audit"}); err != nil {
		t.Fatalf("create permission: %v", err)
	}

	count := db.Model(team).Association("Permissions").Count()
	if count != 0 {
		t.Fatalf("expected no permissions on non-administrators team, got %d", count)
	}
}

func TestCreatePermissionReportsMissingAdministrators(t *testing.T) {
	db := testDB(t)
	az := newAuthz(db)
	client := createTestClient(t, db, "acme-portal")
	owner := createTestUser(t, db, "owner")

	ws, err := NewWorkspaceService(db, az).Create(owner.ID, client.ID, CreateWorkspaceRequest{Name: "Alpha"})
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	admins := adminsTeam(t, db, ws.ID)
	if err := db.Model(admins).Association("Permissions").Clear(); err != nil {
		t.Fatalf("clear permissions: %v", err)
	}
	if err := db.Delete(admins).Error; err != nil {
		t.Fatalf("delete administrators team: %v", err)
	}

	perm, err := NewPermissionService(db).Create(client.ID, CreatePermissionRequest{Name: "Audit"})
	var propErr *PropagationError
	if !errors.As(err, &propErr) {
		t.Fatalf("expected PropagationError, got %v", err)
	}
	if len(propErr.Failed) != 1 || propErr.Failed[0] != ws.ID.String() {
		t.Fatalf("expected failure for workspace %s, got %v", ws.ID, propErr.Failed)
	}

	// The permission itself survives the partial failure.
	if perm == nil {
		t.Fatal("expected permission to be returned despite propagation failure")
	}
	var count int64
	if err := db.Model(&models.Permission{}).Where("id = ?", perm.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatal("expected permission row to be persisted")
	}
}

func TestListPermissionsOrders(t *testing.T) {
	db := testDB(t)
	client := createTestClient(t, db, "acme-portal")
	svc := NewPermissionService(db)

	byName, err := svc.List(client.ID, OrderNameAsc)
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 8 {
		t.Fatalf("expected 8 permissions, got %d", len(byName))
	}
	if !sort.SliceIsSorted(byName, func(i, j int) bool { return byName[i].Name < byName[j].Name }) {
		t.Error("expected permissions sorted by name ascending")
	}

	byCreation, err := svc.List(client.ID, OrderCreatedDesc)
	if err != nil {
		t.Fatalf("list by creation: %v", err)
	}
	if len(byCreation) != 8 {
		t.Fatalf("expected 8 permissions, got %d", len(byCreation))
	}
}

func TestListPermissionsUnknownClient(t *testing.T) {
	db := testDB(t)

	_, err := NewPermissionService(db).List(uuid.New(), OrderNameAsc)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
