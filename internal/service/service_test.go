package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gatehouse-dev/gatehouse/internal/authz"
	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// testDB creates a file-backed DB in a temp dir and migrates all models.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Permission{},
		&models.Workspace{},
		&models.Team{},
		&models.TeamMember{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	testUserSeq++
	user := models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s-%d@example.com", username, testUserSeq),
		PasswordHash: "!test",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

// createTestClient registers a client through the service so the default
// permission catalog is bootstrapped.
func createTestClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	t.Helper()
	client, err := NewClientService(db).Create(CreateClientRequest{Name: name, Secret: "s3cret"})
	if err != nil {
		t.Fatalf("create client %s: %v", name, err)
	}
	return client
}

// addMember inserts a membership row directly, bypassing the invitation flow.
func addMember(t *testing.T, db *gorm.DB, teamID, userID uuid.UUID, status models.MemberStatus) *models.TeamMember {
	t.Helper()
	member := models.TeamMember{
		TeamID: teamID,
		UserID: &userID,
		Status: status,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	return &member
}

// permissionBySlug looks up one of a client's permissions by slug.
func permissionBySlug(t *testing.T, db *gorm.DB, clientID uuid.UUID, slug string) *models.Permission {
	t.Helper()
	var perm models.Permission
	if err := db.Where("client_id = ? AND slug = ?", clientID, slug).First(&perm).Error; err != nil {
		t.Fatalf("permission %s: %v", slug, err)
	}
	return &perm
}

// adminsTeam returns the Administrators team of a workspace with its
// permission set loaded.
func adminsTeam(t *testing.T, db *gorm.DB, workspaceID uuid.UUID) *models.Team {
	t.Helper()
	var team models.Team
	err := db.Preload("Permissions").
		Where("workspace_id = ? AND name = ?", workspaceID, models.AdministratorsTeamName).
		First(&team).Error
	if err != nil {
		t.Fatalf("administrators team: %v", err)
	}
	return &team
}

func newAuthz(db *gorm.DB) *authz.Authorizer {
	return authz.New(db)
}
