package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team is a named group within a workspace. It holds a permission set
// (many-to-many with Permission, same client as the workspace) and members.
type Team struct {
	ID          uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Slug        string    `gorm:"not null;uniqueIndex:idx_teams_slug_workspace" json:"slug"`
	WorkspaceID uuid.UUID `gorm:"type:text;not null;index;uniqueIndex:idx_teams_slug_workspace" json:"workspace_id"`
	Workspace   Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`

	Permissions []Permission `gorm:"many2many:team_permissions" json:"permissions,omitempty"`
	Members     []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
