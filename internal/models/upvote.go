package models

import (
	"time"

	"gorm.io/gorm"
)

// Upvote is one user's endorsement of a public complaint. The
// (UserID, ComplaintID) pair is unique.
type Upvote struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_upvote_user_complaint" json:"userId"`
	ComplaintID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_upvote_user_complaint;index" json:"complaintId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *Upvote) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&u.ID)
	return
}
