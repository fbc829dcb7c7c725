package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission is a named capability owned by a client. Slugs are unique per
// client, not globally: two clients may define the same slug independently.
type Permission struct {
	ID          uuid.UUID `gorm:"type:text;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description,omitempty"`
	Slug        string    `gorm:"not null;uniqueIndex:idx_permissions_slug_client" json:"slug"`
	ClientID    uuid.UUID `gorm:"type:text;not null;index;uniqueIndex:idx_permissions_slug_client" json:"client_id"`
	Client      Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID
func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
