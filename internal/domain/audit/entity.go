// Package audit records who did what to which resource.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names recorded in the audit log
const (
	ActionRoleSelected   = "user.role_selected"
	ActionPasswordReset  = "user.password_reset"
	ActionMFAEnabled     = "user.mfa_enabled"
	ActionDoctorVerified = "doctor.verified"
	ActionDoctorRejected = "doctor.rejected"
	ActionFoodCreated    = "food.created"
	ActionFoodUpdated    = "food.updated"
	ActionFoodDeleted    = "food.deleted"
	ActionDietPlanSent   = "dietplan.sent"
)

// Entry is one audit record
type Entry struct {
	ID         uuid.UUID              `json:"id"`
	ActorID    uuid.UUID              `json:"actorId"`
	ActorRole  string                 `json:"actorRole"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resourceId"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// NewEntry creates an audit record stamped now
func NewEntry(actorID uuid.UUID, actorRole, action, resource, resourceID string, metadata map[string]interface{}) *Entry {
	return &Entry{
		ID:         uuid.New(),
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
}
