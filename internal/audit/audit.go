package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

// LogAction records an audit log entry
func LogAction(db *gorm.DB, userID uuid.UUID, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&log).Error
}

// Audit actions constants
const (
	ActionCreateClient     = "create_client"
	ActionDeleteClient     = "delete_client"
	ActionCreatePermission = "create_permission"
	ActionCreateWorkspace  = "create_workspace"
	ActionDeleteWorkspace  = "delete_workspace"
	ActionCreateTeam       = "create_team"
	ActionUpdateTeam       = "update_team"
	ActionSyncPermissions  = "sync_team_permissions"
	ActionDeleteTeam       = "delete_team"
	ActionCreateMember     = "create_team_member"
	ActionRemoveMember     = "remove_team_member"
	ActionAcceptInvitation = "accept_invitation"
	ActionRejectInvitation = "reject_invitation"
	ActionCreateUser       = "create_user"
	ActionLogin            = "login"
	ActionLoginFailed      = "login_failed"
)
