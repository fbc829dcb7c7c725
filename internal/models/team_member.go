package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberStatus represents the lifecycle state of a team member row
type MemberStatus string

const (
	MemberStatusPending MemberStatus = "pending"
	MemberStatusActive  MemberStatus = "active"
)

// TeamMember links a team to either a registered user or a bare email
// invitation. Exactly one of UserID/Email is set; once an invitation resolves
// to a user the email is cleared. The unique indexes are the authoritative
// guard against duplicate members per team; application-level pre-checks only
// exist to produce friendly validation errors.
type TeamMember struct {
	ID     uuid.UUID    `gorm:"type:text;primary_key" json:"id"`
	TeamID uuid.UUID    `gorm:"type:text;not null;index;uniqueIndex:idx_members_team_user;uniqueIndex:idx_members_team_email" json:"team_id"`
	Team   Team         `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	UserID *uuid.UUID   `gorm:"type:text;uniqueIndex:idx_members_team_user" json:"user_id,omitempty"`
	User   *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Email  *string      `gorm:"uniqueIndex:idx_members_team_email" json:"email,omitempty"`
	Status MemberStatus `gorm:"not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
