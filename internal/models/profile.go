package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile holds the public details of a user. Freelancers fill skills, rate and
// availability; clients fill business name. Both may set bio and contact.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Bio          string          `gorm:"type:text" json:"bio"`
	Skills       datatypes.JSON  `json:"skills"`
	HourlyRate   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"hourly_rate"`
	PortfolioURL string          `gorm:"type:text" json:"portfolio_url"`
	Availability string          `gorm:"type:varchar(100)" json:"availability"`

	BusinessName string `gorm:"type:varchar(150)" json:"business_name"`
	ContactNo    string `gorm:"type:varchar(30)" json:"contact_no"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
