package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// ClientService contains the business logic for client (tenant) registration.
type ClientService struct {
	db *gorm.DB
}

// NewClientService creates a new ClientService.
func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// Create registers a client and bootstraps its default permission catalog.
// The client and its default permissions are committed in one transaction: a
// client is never observable without its defaults.
func (s *ClientService) Create(req CreateClientRequest) (*models.Client, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	secretHash, err := bcrypt.GenerateFromPassword([]byte(req.Secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}

	client := models.Client{
		Name:       req.Name,
		SecretHash: string(secretHash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return fmt.Errorf("create client: %w", err)
		}
		return bootstrapDefaultPermissions(tx, client.ID)
	})
	if err != nil {
		var exists int64
		s.db.Model(&models.Client{}).Where("name = ?", req.Name).Count(&exists)
		if exists > 0 {
			return nil, &ConflictError{Message: "a client with this name already exists"}
		}
		return nil, err
	}

	return &client, nil
}

// Get returns a client by ID.
func (s *ClientService) Get(id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// GetByName returns a client by exact name. Used by administrative commands.
func (s *ClientService) GetByName(name string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("name = ?", name).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// List returns all registered clients, newest first.
func (s *ClientService) List() ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Delete removes a client and everything scoped to it: permissions,
// workspaces, their teams, team permission attachments, and members.
// Children are deleted before parents within one transaction.
func (s *ClientService) Delete(id uuid.UUID) error {
	client, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var workspaceIDs []uuid.UUID
		if err := tx.Model(&models.Workspace{}).Where("client_id = ?", client.ID).Pluck("id", &workspaceIDs).Error; err != nil {
			return err
		}
		for _, wsID := range workspaceIDs {
			if err := deleteWorkspaceTree(tx, wsID); err != nil {
				return err
			}
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&models.Permission{}).Error; err != nil {
			return err
		}
		return tx.Delete(client).Error
	})
}

// deleteWorkspaceTree removes a workspace's teams, their members and
// permission attachments, then the workspace itself.
func deleteWorkspaceTree(tx *gorm.DB, workspaceID uuid.UUID) error {
	var teams []models.Team
	if err := tx.Where("workspace_id = ?", workspaceID).Find(&teams).Error; err != nil {
		return err
	}
	for i := range teams {
		if err := tx.Where("team_id = ?", teams[i].ID).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&teams[i]).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Delete(&teams[i]).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", workspaceID).Delete(&models.Workspace{}).Error
}
