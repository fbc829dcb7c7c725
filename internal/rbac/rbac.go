// Package rbac gates the system-operator surface: client registration,
// permission catalog administration, and audit log access. It is layered
// above (and is entirely distinct from) the tenant-scoped authorization
// engine in internal/authz.
package rbac

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelConf string

var enforcer *casbin.Enforcer

// InitEnforcer initializes the Casbin enforcer
func InitEnforcer(db *gorm.DB, logger *slog.Logger) error {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelConf)
	if err != nil {
		return fmt.Errorf("failed to parse casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := e.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	enforcer = e
	logger.Info("RBAC enforcer initialized")
	return nil
}

// IsAdmin checks if user has system-operator privileges
func IsAdmin(userID uuid.UUID) (bool, error) {
	return enforcer.Enforce(userID.String(), "admin", "admin")
}

// MakeAdmin grants system-operator privileges to a user
func MakeAdmin(userID uuid.UUID) error {
	_, err := enforcer.AddPolicy(userID.String(), "admin", "admin")
	if err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// RevokeAdmin removes system-operator privileges from a user
func RevokeAdmin(userID uuid.UUID) error {
	_, err := enforcer.RemovePolicy(userID.String(), "admin", "admin")
	if err != nil {
		return err
	}
	return enforcer.SavePolicy()
}

// GetAllAdminUserIDs returns a set of all user IDs that have system-operator privileges
func GetAllAdminUserIDs() (map[uuid.UUID]bool, error) {
	policies, err := enforcer.GetFilteredPolicy(1, "admin", "admin")
	if err != nil {
		return nil, err
	}

	adminUserIDs := make(map[uuid.UUID]bool, len(policies))
	for _, policy := range policies {
		if len(policy) >= 1 {
			if userID, err := uuid.Parse(policy[0]); err == nil {
				adminUserIDs[userID] = true
			}
		}
	}

	return adminUserIDs, nil
}
