package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
)

type Project struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Title       string          `gorm:"type:varchar(200);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Budget      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"budget"`
	Duration    string          `gorm:"type:varchar(50)" json:"duration"` // e.g. "2 weeks"
	Skills      datatypes.JSON  `json:"skills"`                           // ["go", "postgres"]

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client    *User      `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Proposals []Proposal `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"proposals,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
