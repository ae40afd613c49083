package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Role is the access role attached to every authenticated identity.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleCounselor || r == RoleAdmin
}

// User represents an account in the system. The realtime layer only reads
// the ID and Role; profile fields are managed by the main application.
type User struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Role        Role           `gorm:"type:text;not null;index" json:"role"`
	DisplayName string         `gorm:"type:text" json:"displayName"`
	Specialties pq.StringArray `gorm:"type:text[]" json:"specialties,omitempty"` // counselor specialty tags
	CreatedAt   time.Time      `json:"createdAt"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
