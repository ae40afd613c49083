package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus tracks the booking lifecycle. The realtime layer only
// cares that the appointment exists; status transitions belong to the
// booking service.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentActive    AppointmentStatus = "active"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a booked session between one patient and one counselor.
// Its ID doubles as the conversation room identifier.
type Appointment struct {
	ID          string            `gorm:"primaryKey" json:"id"`
	PatientID   string            `gorm:"type:uuid;not null;index" json:"patientId"`
	CounselorID string            `gorm:"type:uuid;not null;index" json:"counselorId"`
	Status      AppointmentStatus `gorm:"type:text;not null;default:scheduled" json:"status"`
	ScheduledAt time.Time         `json:"scheduledAt"`
	CreatedAt   time.Time         `json:"-"`
	UpdatedAt   time.Time         `json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}

// Involves reports whether the given user is one of the two participants.
func (a *Appointment) Involves(userID string) bool {
	return a.PatientID == userID || a.CounselorID == userID
}
