package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

// Contract is created once, when its proposal is accepted. AgreedRate is a
// copy taken at that moment and is never re-derived from the proposal.
type Contract struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"proposal_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"project_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	AgreedRate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"agreed_rate"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    *time.Time      `json:"end_date,omitempty"`

	Status ContractStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Proposal *Proposal `gorm:"foreignKey:ProposalID;constraint:OnDelete:CASCADE" json:"proposal,omitempty"`
	Project  *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// Counterparty returns the other side of the contract.
func (c *Contract) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == c.ClientID {
		return c.FreelancerID
	}
	return c.ClientID
}

func (c *Contract) IsParty(userID uuid.UUID) bool {
	return userID == c.ClientID || userID == c.FreelancerID
}
