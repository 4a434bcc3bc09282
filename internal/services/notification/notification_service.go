package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

// Refs are weak references to whatever triggered a notification.
type Refs struct {
	ProjectID  uuid.UUID
	ProposalID uuid.UUID
	ContractID uuid.UUID
	MessageID  uuid.UUID
	ReviewID   uuid.UUID
}

func (r Refs) toMap() datatypes.JSONMap {
	m := datatypes.JSONMap{}
	add := func(k string, id uuid.UUID) {
		if id != uuid.Nil {
			m[k] = id.String()
		}
	}
	add("project_id", r.ProjectID)
	add("proposal_id", r.ProposalID)
	add("contract_id", r.ContractID)
	add("message_id", r.MessageID)
	add("review_id", r.ReviewID)
	return m
}

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Notify appends a notification. The only check is that the recipient exists.
func (s *NotificationService) Notify(ctx context.Context, recipientID uuid.UUID, kind models.NotificationKind, title, body string, refs Refs) (*models.Notification, error) {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", recipientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check recipient: %w", err)
	}
	if count == 0 {
		return nil, apperr.NotFound("recipient")
	}

	n := models.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Title:       title,
		Body:        body,
		Refs:        refs.toMap(),
	}
	if err := db.Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &n, nil
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := s.DB.WithContext(ctx).Where("recipient_id = ?", actor.ID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var out []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", actor.ID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error) {
	now := time.Now()
	return s.setRead(ctx, actor, id, true, &now)
}

func (s *NotificationService) MarkUnread(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Notification, error) {
	return s.setRead(ctx, actor, id, false, nil)
}

func (s *NotificationService) setRead(ctx context.Context, actor models.Actor, id uuid.UUID, read bool, at *time.Time) (*models.Notification, error) {
	db := s.DB.WithContext(ctx)

	var n models.Notification
	if err := db.First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("notification")
		}
		return nil, fmt.Errorf("load notification: %w", err)
	}
	if n.RecipientID != actor.ID {
		return nil, apperr.Forbidden("notification belongs to another user")
	}

	err := db.Model(&n).Select("is_read", "read_at").Updates(map[string]interface{}{
		"is_read": read,
		"read_at": at,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	n.IsRead = read
	n.ReadAt = at
	return &n, nil
}

// MarkAllRead marks every unread notification of the actor and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("mark all read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
