package db

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/config"
	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/rbac"
)

// CreateDefaultAdmin creates the configured bootstrap system administrator if
// it does not exist. A blank password disables the bootstrap entirely.
func CreateDefaultAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Password == "" {
		return nil
	}

	username := cfg.Username
	if username == "" {
		username = "admin"
	}
	email := cfg.Email
	if email == "" {
		email = "admin@localhost"
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if err := rbac.MakeAdmin(user.ID); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}

	slog.Info("Created default admin user", "username", username)
	return nil
}
