package storage

import (
	"log"

	"mindcare/backend/internal/models"
)

// SaveNotification writes the durable backlog row. The live push happens
// separately through the hub; a user who is offline at dispatch time finds
// the notification here on next login.
func (s *Service) SaveNotification(n *models.Notification) error {
	if err := s.DB.Create(n).Error; err != nil {
		log.Printf("ERROR: Failed to save notification (scope %s): %v", n.Scope, err)
		return err
	}
	return nil
}

// GetUnreadNotifications returns the backlog visible to the given identity:
// direct, role-scoped, and global notifications that are still unread.
func (s *Service) GetUnreadNotifications(userID string, role models.Role) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.
		Where("is_read = ?", false).
		Where(
			s.DB.Where("scope = ? AND recipient_id = ?", models.ScopeUser, userID).
				Or("scope = ? AND recipient_role = ?", models.ScopeRole, role).
				Or("scope = ?", models.ScopeGlobal),
		).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		log.Printf("ERROR: Failed to load notifications for user %s: %v", userID, err)
		return nil, err
	}
	return out, nil
}

// MarkNotificationRead flips the read flag on a user-scoped row owned by
// userID. Role and global rows are shared backlog and must stay unread for
// the other recipients, so clients track those locally; asking to mark one
// here returns ErrNotFound.
func (s *Service) MarkNotificationRead(id uint, userID string) error {
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND scope = ? AND recipient_id = ?", id, models.ScopeUser, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotification removes a user-scoped notification owned by userID.
func (s *Service) DeleteNotification(id uint, userID string) error {
	result := s.DB.
		Where("id = ? AND scope = ? AND recipient_id = ?", id, models.ScopeUser, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
