package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventAction string

const (
	ActionStatusChange EventAction = "status_change"
	ActionEscalation   EventAction = "escalation"
	ActionAssignment   EventAction = "assignment"
	ActionDeletion     EventAction = "deletion"
)

// ComplaintEvent is an append-only record of a lifecycle change.
type ComplaintEvent struct {
	ID          string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	ComplaintID string          `gorm:"type:varchar(36);index;not null" json:"complaintId"`
	Action      EventAction     `gorm:"type:varchar(32);not null" json:"action"`
	FromStatus  ComplaintStatus `gorm:"type:varchar(40)" json:"fromStatus"`
	ToStatus    ComplaintStatus `gorm:"type:varchar(40)" json:"toStatus"`
	ActorID     string          `gorm:"type:varchar(36)" json:"actorId,omitempty"`
	ActorRole   AccessLevel     `gorm:"type:varchar(32)" json:"actorRole,omitempty"`
	Details     datatypes.JSON  `json:"details,omitempty"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
}

func (e *ComplaintEvent) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&e.ID)
	return
}

// Actor identifies who triggered a change. The zero value is the system.
type Actor struct {
	ID   string
	Role AccessLevel
}
