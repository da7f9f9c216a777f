package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessLevel scopes what a bearer token may do.
type AccessLevel string

const (
	AccessUser           AccessLevel = "USER"
	AccessAgent          AccessLevel = "AGENT"
	AccessMunicipalAdmin AccessLevel = "DEPT_MUNICIPAL_ADMIN"
	AccessStateAdmin     AccessLevel = "DEPT_STATE_ADMIN"
	AccessSuperAdmin     AccessLevel = "SUPER_ADMIN"
)

// Valid reports whether a is one of the known access levels.
func (a AccessLevel) Valid() bool {
	switch a {
	case AccessUser, AccessAgent, AccessMunicipalAdmin, AccessStateAdmin, AccessSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether a is one of the administrator tiers.
func (a AccessLevel) IsAdmin() bool {
	return a == AccessMunicipalAdmin || a == AccessStateAdmin || a == AccessSuperAdmin
}

// User is a citizen who files and upvotes complaints.
// District and City drive the "for you" feed.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNumber  string    `gorm:"type:varchar(32)" json:"phoneNumber,omitempty"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`
	District     string    `gorm:"type:varchar(128)" json:"district,omitempty"`
	City         string    `gorm:"type:varchar(128)" json:"city,omitempty"`
	Pin          string    `gorm:"type:varchar(16)" json:"pin,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate генерує UUID, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&u.ID)
	return
}

// Admin covers the municipal, state and super administrator tiers.
type Admin struct {
	ID           string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string      `gorm:"type:varchar(255);not null" json:"fullName"`
	PasswordHash string      `gorm:"type:varchar(255)" json:"-"`
	AccessLevel  AccessLevel `gorm:"type:varchar(32);index;not null" json:"accessLevel"`
	Municipality string      `gorm:"type:varchar(128)" json:"municipality,omitempty"`
	State        string      `gorm:"type:varchar(128)" json:"state,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	ensureID(&a.ID)
	return
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
