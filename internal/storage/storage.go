package storage

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mindcare/backend/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence collaborator consumed by the realtime hub, the
// REST handlers, and the admin CLI.
type Store interface {
	// Messages
	InsertMessage(msg *models.ChatMessage) error
	MarkMessagesRead(appointmentID, readerID string) error
	GetChatHistory(appointmentID string) ([]models.ChatMessage, error)

	// Appointments
	GetAppointmentByID(id string) (*models.Appointment, error)
	CloseStaleAppointments(before time.Time) (int64, error)

	// Users
	GetUserByID(id string) (*models.User, error)

	// Notifications
	SaveNotification(n *models.Notification) error
	GetUnreadNotifications(userID string, role models.Role) ([]models.Notification, error)
	MarkNotificationRead(id uint, userID string) error
	DeleteNotification(id uint, userID string) error
	PublishNotification(n models.Notification) error

	// Presence mirror
	AddOnlineUser(userID string) error
	RemoveOnlineUser(userID string) error
	GetOnlineUsers() ([]string, error)
}

// Service implements Store on PostgreSQL (GORM) plus Redis for the presence
// mirror and cross-node Pub/Sub.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// InsertMessage persists a chat message and fills in the server-assigned ID
// and CreatedAt. The relay broadcasts only after this returns, so every
// recipient sees the canonical record.
func (s *Service) InsertMessage(msg *models.ChatMessage) error {
	msg.Content = strings.TrimSpace(msg.Content)
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for appointment %s: %v", msg.AppointmentID, err)
		return err
	}
	return nil
}

// MarkMessagesRead bulk-marks every unread message in the appointment that
// was not sent by the reader. The is_read guard keeps the flag monotonic.
func (s *Service) MarkMessagesRead(appointmentID, readerID string) error {
	return s.DB.Model(&models.ChatMessage{}).
		Where("appointment_id = ? AND sender_id <> ? AND is_read = ?", appointmentID, readerID, false).
		Update("is_read", true).Error
}

// GetChatHistory returns the appointment's messages in creation order.
func (s *Service) GetChatHistory(appointmentID string) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	if err := s.DB.Where("appointment_id = ?", appointmentID).
		Order("created_at asc").Find(&history).Error; err != nil {
		log.Printf("ERROR: Failed to get chat history for appointment %s: %v", appointmentID, err)
		return nil, err
	}
	return history, nil
}

func (s *Service) GetAppointmentByID(id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.DB.Where("id = ?", id).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get appointment %s: %v", id, err)
		return nil, err
	}
	return &appt, nil
}

// CloseStaleAppointments marks still-active appointments scheduled before
// the cutoff as completed. Used by the ops CLI.
func (s *Service) CloseStaleAppointments(before time.Time) (int64, error) {
	result := s.DB.Model(&models.Appointment{}).
		Where("status = ? AND scheduled_at < ?", models.AppointmentActive, before).
		Update("status", models.AppointmentCompleted)
	return result.RowsAffected, result.Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
