package notification

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

// Pusher delivers a serialized notification to a user's live connections.
type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, payload []byte) error
}

type Event struct {
	RecipientID uuid.UUID
	Kind        models.NotificationKind
	Title       string
	Body        string
	Refs        Refs
}

// Fanout runs after a state change has committed. It never reports errors to
// the caller: failures are logged and counted, and the remaining events are
// still delivered.
type Fanout struct {
	Notifications *NotificationService
	Pusher        Pusher
	Log           *zap.Logger
}

func NewFanout(svc *NotificationService, pusher Pusher, log *zap.Logger) *Fanout {
	return &Fanout{Notifications: svc, Pusher: pusher, Log: log}
}

func (f *Fanout) Emit(ctx context.Context, events ...Event) {
	for _, ev := range events {
		n, err := f.Notifications.Notify(ctx, ev.RecipientID, ev.Kind, ev.Title, ev.Body, ev.Refs)
		if err != nil {
			metrics.NotificationFailures.WithLabelValues("store").Inc()
			f.Log.Warn("notification not stored",
				zap.Stringer("recipient_id", ev.RecipientID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
			continue
		}
		metrics.NotificationsSent.WithLabelValues(string(ev.Kind)).Inc()

		if f.Pusher == nil {
			continue
		}
		payload, err := json.Marshal(map[string]interface{}{
			"type":         "notification",
			"notification": n,
		})
		if err != nil {
			f.Log.Error("marshal notification", zap.Error(err))
			continue
		}
		if err := f.Pusher.Push(ctx, ev.RecipientID, payload); err != nil {
			metrics.NotificationFailures.WithLabelValues("push").Inc()
			f.Log.Warn("notification push failed",
				zap.Stringer("notification_id", n.ID),
				zap.Error(err))
		}
	}
}
