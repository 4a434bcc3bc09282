package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

const maxTextLen = 5000

type MessageService struct {
	DB     *gorm.DB
	Fanout *notification.Fanout
	Log    *zap.Logger
}

func NewMessageService(db *gorm.DB, fanout *notification.Fanout, log *zap.Logger) *MessageService {
	return &MessageService{DB: db, Fanout: fanout, Log: log}
}

type SendInput struct {
	ReceiverID uuid.UUID  `json:"receiver_id"`
	ProjectID  *uuid.UUID `json:"project_id"`
	Text       string     `json:"text"`
}

// InboxEntry is the latest message of one conversation.
type InboxEntry struct {
	OtherUserID uuid.UUID      `json:"other_user_id"`
	Last        models.Message `json:"last_message"`
	Unread      int64          `json:"unread"`
}

// Send stores a message and notifies the receiver exactly once.
func (s *MessageService) Send(ctx context.Context, actor models.Actor, in SendInput) (*models.Message, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	if len(text) > maxTextLen {
		return nil, apperr.Validation("text is too long")
	}
	if in.ReceiverID == uuid.Nil {
		return nil, apperr.Validation("receiver_id is required")
	}
	if in.ReceiverID == actor.ID {
		return nil, apperr.Validation("you cannot message yourself")
	}

	db := s.DB.WithContext(ctx)
	var receiver models.User
	if err := db.Select("id").First(&receiver, "id = ?", in.ReceiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("receiver")
		}
		return nil, fmt.Errorf("load receiver: %w", err)
	}
	if in.ProjectID != nil {
		var n int64
		if err := db.Model(&models.Project{}).Where("id = ?", *in.ProjectID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		if n == 0 {
			return nil, apperr.NotFound("project")
		}
	}

	msg := models.Message{
		SenderID:   actor.ID,
		ReceiverID: in.ReceiverID,
		ProjectID:  in.ProjectID,
		Text:       text,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	refs := notification.Refs{MessageID: msg.ID}
	if msg.ProjectID != nil {
		refs.ProjectID = *msg.ProjectID
	}
	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: msg.ReceiverID,
		Kind:        models.NotifNewMessage,
		Title:       "New message",
		Body:        preview(text),
		Refs:        refs,
	})
	return &msg, nil
}

// Conversation returns messages exchanged with otherID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, actor models.Actor, otherID uuid.UUID, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Message
	err := s.DB.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			actor.ID, otherID, otherID, actor.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

type inboxRow struct {
	OtherUserID uuid.UUID
	Unread      int64
}

// Inbox lists one entry per counterpart, newest conversation first. Grouping
// and unread counts are computed in SQL so only limit conversations are loaded.
func (s *MessageService) Inbox(ctx context.Context, actor models.Actor, limit int) ([]InboxEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := s.DB.WithContext(ctx)

	var rows []inboxRow
	if err := db.Model(&models.Message{}).
		Select("CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS other_user_id, "+
			"SUM(CASE WHEN receiver_id = ? AND is_read = ? THEN 1 ELSE 0 END) AS unread",
			actor.ID, actor.ID, false).
		Where("sender_id = ? OR receiver_id = ?", actor.ID, actor.ID).
		Group("other_user_id").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load inbox: %w", err)
	}

	out := make([]InboxEntry, 0, len(rows))
	for _, r := range rows {
		var last models.Message
		if err := db.
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				actor.ID, r.OtherUserID, r.OtherUserID, actor.ID).
			Order("created_at DESC").
			First(&last).Error; err != nil {
			return nil, fmt.Errorf("load last message: %w", err)
		}
		out = append(out, InboxEntry{OtherUserID: r.OtherUserID, Last: last, Unread: r.Unread})
	}
	return out, nil
}

// MarkRead marks a single message read. Only its receiver may do that.
func (s *MessageService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Message, error) {
	db := s.DB.WithContext(ctx)

	var m models.Message
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("message")
		}
		return nil, fmt.Errorf("load message: %w", err)
	}
	if m.ReceiverID != actor.ID {
		return nil, apperr.Forbidden("only the receiver can mark a message read")
	}
	if m.IsRead {
		return &m, nil
	}

	now := time.Now()
	if err := db.Model(&m).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error; err != nil {
		return nil, fmt.Errorf("mark message read: %w", err)
	}
	m.IsRead = true
	m.ReadAt = &now
	return &m, nil
}

// MarkConversationRead marks every unread message from otherID to actor as read.
func (s *MessageService) MarkConversationRead(ctx context.Context, actor models.Actor, otherID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", otherID, actor.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= 80 {
		return text
	}
	return string(r[:80]) + "..."
}
