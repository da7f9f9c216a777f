package models

import (
	"time"

	"gorm.io/gorm"
)

// ComplaintStatus is a lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusRegistered      ComplaintStatus = "REGISTERED"
	StatusUnderProcessing ComplaintStatus = "UNDER_PROCESSING"
	StatusForwarded       ComplaintStatus = "FORWARDED"
	StatusOnHold          ComplaintStatus = "ON_HOLD"
	StatusCompleted       ComplaintStatus = "COMPLETED"
	StatusRejected        ComplaintStatus = "REJECTED"
	StatusEscalated       ComplaintStatus = "ESCALATED_TO_MUNICIPAL_LEVEL"
	// StatusDeleted is a soft delete. It is never a valid transition target.
	StatusDeleted ComplaintStatus = "DELETED"
)

// TransitionStatuses is the allow-list for status updates, in lifecycle order.
var TransitionStatuses = []ComplaintStatus{
	StatusRegistered,
	StatusUnderProcessing,
	StatusForwarded,
	StatusOnHold,
	StatusCompleted,
	StatusRejected,
	StatusEscalated,
}

// IsTransitionTarget reports whether s may be requested by a status update.
func (s ComplaintStatus) IsTransitionTarget() bool {
	for _, v := range TransitionStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Urgency of a complaint as reported by the complainant.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Complaint is a citizen-filed issue tracked through its lifecycle.
//
// UpvoteCount is denormalized and must equal the number of Upvote rows
// referencing the complaint. AssignedAgentID is only ever set once.
type Complaint struct {
	ID                      string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Seq                     int64           `gorm:"uniqueIndex;not null" json:"seq"`
	ComplainantID           string          `gorm:"type:varchar(36);index;not null" json:"complainantId"`
	CategoryID              string          `gorm:"type:varchar(36);index;not null" json:"categoryId"`
	SubCategory             string          `gorm:"type:varchar(255);not null" json:"subCategory"`
	StandardizedSubCategory string          `gorm:"type:varchar(255)" json:"standardizedSubCategory,omitempty"`
	Description             string          `gorm:"type:text;not null" json:"description"`
	Urgency                 Urgency         `gorm:"type:varchar(16);index;not null" json:"urgency"`
	Status                  ComplaintStatus `gorm:"type:varchar(40);index;not null" json:"status"`
	AssignedDepartment      string          `gorm:"type:varchar(64)" json:"assignedDepartment"`
	IsPublic                bool            `gorm:"index;not null" json:"isPublic"`
	AttachmentURL           *string         `gorm:"type:varchar(1024)" json:"attachmentUrl,omitempty"`
	AssignedAgentID         *string         `gorm:"type:varchar(36);index" json:"assignedAgentId"`
	UpvoteCount             int             `gorm:"not null;default:0" json:"upvoteCount"`
	SubmissionDate          time.Time       `gorm:"index;not null" json:"submissionDate"`
	DateOfResolution        *time.Time      `json:"dateOfResolution"`
	EscalatedAt             *time.Time      `json:"escalatedAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`

	Location      *Location `gorm:"foreignKey:ComplaintID" json:"location,omitempty"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Complainant   *User     `gorm:"foreignKey:ComplainantID" json:"complainant,omitempty"`
	AssignedAgent *Agent    `gorm:"foreignKey:AssignedAgentID" json:"assignedAgent,omitempty"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&c.ID)
	return
}

// IsAssigned reports whether an agent has been attached to the complaint.
func (c *Complaint) IsAssigned() bool {
	return c.AssignedAgentID != nil && *c.AssignedAgentID != ""
}

// Location is the one-to-one address of a complaint.
type Location struct {
	ID          string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	ComplaintID string   `gorm:"type:varchar(36);uniqueIndex;not null" json:"complaintId"`
	Pin         string   `gorm:"type:varchar(16)" json:"pin"`
	District    string   `gorm:"type:varchar(128);index" json:"district"`
	City        string   `gorm:"type:varchar(128);index" json:"city"`
	Locality    string   `gorm:"type:varchar(255)" json:"locality,omitempty"`
	Street      string   `gorm:"type:varchar(255)" json:"street,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

func (Location) TableName() string { return "complaint_locations" }

func (l *Location) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&l.ID)
	return
}
