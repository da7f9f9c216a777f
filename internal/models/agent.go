package models

import (
	"time"

	"gorm.io/gorm"
)

type AgentStatus string

const (
	AgentActive    AgentStatus = "ACTIVE"
	AgentInactive  AgentStatus = "INACTIVE"
	AgentSuspended AgentStatus = "SUSPENDED"
)

// Availability is self-reported by the agent. Only AvailabilityAtWork
// agents receive new assignments.
type Availability string

const (
	AvailabilityAtWork  Availability = "At Work"
	AvailabilityOnLeave Availability = "On Leave"
	AvailabilityOffDuty Availability = "Off Duty"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAtWork, AvailabilityOnLeave, AvailabilityOffDuty:
		return true
	}
	return false
}

// Agent is a municipal staff member who resolves assigned complaints.
//
// CurrentWorkload < WorkloadLimit is checked when assigning, but status
// edits may move the counter outside that range.
type Agent struct {
	ID                 string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email              string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	OfficialEmail      string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"officialEmail"`
	EmployeeID         string       `gorm:"type:varchar(64);not null" json:"employeeId"`
	FullName           string       `gorm:"type:varchar(255);not null" json:"fullName"`
	PasswordHash       string       `gorm:"type:varchar(255);not null" json:"-"`
	PhoneNumber        string       `gorm:"type:varchar(32)" json:"phoneNumber"`
	Department         string       `gorm:"type:varchar(64);index" json:"department"`
	Municipality       string       `gorm:"type:varchar(128);index" json:"municipality"`
	AccessLevel        AccessLevel  `gorm:"type:varchar(32);not null" json:"accessLevel"`
	Status             AgentStatus  `gorm:"type:varchar(16);index;not null" json:"status"`
	WorkloadLimit      int          `gorm:"not null" json:"workloadLimit"`
	CurrentWorkload    int          `gorm:"not null;default:0" json:"currentWorkload"`
	AvailabilityStatus Availability `gorm:"type:varchar(16);index;not null" json:"availabilityStatus"`
	LastLogin          *time.Time   `json:"lastLogin"`
	ResolutionRate     float64      `gorm:"not null;default:0" json:"resolutionRate"`
	AvgResolutionTime  float64      `gorm:"not null;default:0" json:"avgResolutionTime"`
	CreatedAt          time.Time    `json:"dateOfCreation"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

func (a *Agent) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&a.ID)
	if a.AccessLevel == "" {
		a.AccessLevel = AccessAgent
	}
	if a.Status == "" {
		a.Status = AgentActive
	}
	if a.AvailabilityStatus == "" {
		a.AvailabilityStatus = AvailabilityAtWork
	}
	return
}

// CanTakeWork reports whether the agent passes the assignment admission
// check. A cap of zero or less means only WorkloadLimit applies.
func (a *Agent) CanTakeWork(cap int) bool {
	if a.Status != AgentActive || a.AvailabilityStatus != AvailabilityAtWork {
		return false
	}
	if a.CurrentWorkload >= a.WorkloadLimit {
		return false
	}
	return cap <= 0 || a.CurrentWorkload < cap
}
