package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Notification kinds surfaced to users.
const (
	NotificationKindGrade    = "grade"
	NotificationKindResource = "resource"
	NotificationKindDeadline = "deadline"
	NotificationKindAtRisk   = "at_risk"
)

// Notification is a persisted message targeted at one user. UserRef combines
// role and id ("student:42") since teachers and students live in separate
// tables. Payload carries kind-specific context such as course code and
// activity id.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserRef   string            `gorm:"size:64;index" json:"user_ref"`
	Kind      string            `gorm:"size:32;not null" json:"kind"`
	Message   string            `gorm:"type:text" json:"message"`
	Payload   datatypes.JSONMap `gorm:"type:json" json:"payload"`
	Read      bool              `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// UserRef builds the role-qualified user reference used by notifications.
func UserRef(role string, id uint) string {
	if role != RoleTeacher {
		role = RoleStudent
	}
	return fmt.Sprintf("%s:%d", role, id)
}
