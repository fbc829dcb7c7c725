package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents an OAuth2 client. It is the tenant boundary: permissions
// and workspaces are always scoped to exactly one client.
type Client struct {
	ID         uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Name       string    `gorm:"uniqueIndex;not null" json:"name"`
	SecretHash string    `gorm:"not null" json:"-"`
	Revoked    bool      `gorm:"not null;default:false" json:"revoked"`

	Permissions []Permission `gorm:"foreignKey:ClientID" json:"permissions,omitempty"`
	Workspaces  []Workspace  `gorm:"foreignKey:ClientID" json:"workspaces,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
