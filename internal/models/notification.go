package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotifProposalReceived  NotificationKind = "proposal_received"
	NotifProposalAccepted  NotificationKind = "proposal_accepted"
	NotifProposalRejected  NotificationKind = "proposal_rejected"
	NotifContractCompleted NotificationKind = "contract_completed"
	NotifContractCancelled NotificationKind = "contract_cancelled"
	NotifNewMessage        NotificationKind = "new_message"
	NotifReviewReceived    NotificationKind = "review_received"
)

// Notification is append-only; IsRead/ReadAt are the only fields that change.
// Refs holds ids of the project/proposal/contract/message that caused it and
// has no foreign keys, so the referents may be deleted independently.
type Notification struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Kind        NotificationKind  `gorm:"type:varchar(40);not null" json:"kind"`
	Title       string            `gorm:"type:varchar(200);not null" json:"title"`
	Body        string            `gorm:"type:text" json:"body"`
	Refs        datatypes.JSONMap `json:"refs"` // {"project_id": "...", "proposal_id": "..."}
	IsRead      bool              `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time        `json:"read_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
