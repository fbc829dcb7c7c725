package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdministratorsTeamName is the name of the team auto-provisioned for every
// workspace. The team is not otherwise special in the data model: its
// authority comes from holding the client's full permission set.
const AdministratorsTeamName = "Administrators"

// Workspace is a container owned by one user and scoped to one client.
// Slugs are unique within the owning client.
type Workspace struct {
	ID       uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Slug     string    `gorm:"not null;uniqueIndex:idx_workspaces_slug_client" json:"slug"`
	UserID   uuid.UUID `gorm:"type:text;not null;index" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClientID uuid.UUID `gorm:"type:text;not null;index;uniqueIndex:idx_workspaces_slug_client" json:"client_id"`
	Client   Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Teams []Team `gorm:"foreignKey:WorkspaceID" json:"teams,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName ensures GORM uses the "workspaces" table
func (Workspace) TableName() string {
	return "workspaces"
}

// BeforeCreate hook to generate UUID
func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
