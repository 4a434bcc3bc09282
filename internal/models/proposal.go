package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is a freelancer's bid on a project. A freelancer has at most one
// proposal per project, and a project has at most one accepted proposal; both
// are unique indexes so concurrent writers cannot break them.
type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposal_project_freelancer;uniqueIndex:idx_proposal_one_accepted,where:status = 'accepted'" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_proposal_project_freelancer;index" json:"freelancer_id"`

	CoverLetter  string          `gorm:"type:text;not null" json:"cover_letter"`
	ProposedRate decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"proposed_rate"`

	Status ProposalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project    *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Freelancer *User    `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
