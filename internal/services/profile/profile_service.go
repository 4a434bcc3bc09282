package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

type ProfileService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewProfileService(db *gorm.DB, log *zap.Logger) *ProfileService {
	return &ProfileService{DB: db, Log: log}
}

type ProfileInput struct {
	Bio          string          `json:"bio"`
	Skills       []string        `json:"skills"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	PortfolioURL string          `json:"portfolio_url"`
	Availability string          `json:"availability"`
	BusinessName string          `json:"business_name"`
	ContactNo    string          `json:"contact_no"`
}

func (in ProfileInput) validate() error {
	if in.HourlyRate.IsNegative() {
		return apperr.Validation("hourly_rate cannot be negative")
	}
	if u := strings.TrimSpace(in.PortfolioURL); u != "" {
		parsed, err := url.ParseRequestURI(u)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return apperr.Validation("portfolio_url must be an http(s) URL")
		}
	}
	if len(strings.TrimSpace(in.ContactNo)) > 30 {
		return apperr.Validation("contact_no is too long")
	}
	if len(strings.TrimSpace(in.BusinessName)) > 150 {
		return apperr.Validation("business_name is too long")
	}
	return nil
}

func skillsJSON(skills []string) (datatypes.JSON, error) {
	clean := make([]string, 0, len(skills))
	seen := map[string]bool{}
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			clean = append(clean, s)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role", "created_at")
}

// GetForUser returns userID's profile with the user's public fields.
func (s *ProfileService) GetForUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).Preload("User", publicUser).
		First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("profile")
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

// UpsertMine creates or replaces the caller's own profile.
func (s *ProfileService) UpsertMine(ctx context.Context, actor models.Actor, in ProfileInput) (*models.Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	skills, err := skillsJSON(in.Skills)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}

	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&models.User{}).Where("id = ?", actor.ID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if n == 0 {
		return nil, apperr.NotFound("user")
	}

	p := models.Profile{
		UserID:       actor.ID,
		Bio:          strings.TrimSpace(in.Bio),
		Skills:       skills,
		HourlyRate:   in.HourlyRate,
		PortfolioURL: strings.TrimSpace(in.PortfolioURL),
		Availability: strings.TrimSpace(in.Availability),
		BusinessName: strings.TrimSpace(in.BusinessName),
		ContactNo:    strings.TrimSpace(in.ContactNo),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bio", "skills", "hourly_rate", "portfolio_url", "availability",
			"business_name", "contact_no", "updated_at",
		}),
	}).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.Log.Info("profile saved", zap.Stringer("user_id", actor.ID))
	return s.GetForUser(ctx, actor.ID)
}
