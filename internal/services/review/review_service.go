package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

type ReviewService struct {
	DB     *gorm.DB
	Fanout *notification.Fanout
	Log    *zap.Logger
}

func NewReviewService(db *gorm.DB, fanout *notification.Fanout, log *zap.Logger) *ReviewService {
	return &ReviewService{DB: db, Fanout: fanout, Log: log}
}

type CreateInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Summary aggregates the reviews a user has received.
type Summary struct {
	UserID  uuid.UUID       `json:"user_id"`
	Count   int64           `json:"count"`
	Average float64         `json:"average"`
	Reviews []models.Review `json:"reviews"`
}

// Create records the actor's review of the other party on a completed contract.
func (s *ReviewService) Create(ctx context.Context, actor models.Actor, contractID uuid.UUID, in CreateInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	var r models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Contract
		if err := tx.First(&c, "id = ?", contractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("contract")
			}
			return fmt.Errorf("load contract: %w", err)
		}
		if !c.IsParty(actor.ID) {
			return apperr.Forbidden("you are not a party to this contract")
		}
		if c.Status != models.ContractCompleted {
			return apperr.InvalidState("only completed contracts can be reviewed")
		}

		var n int64
		if err := tx.Model(&models.Review{}).
			Where("contract_id = ? AND reviewer_id = ?", c.ID, actor.ID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check review: %w", err)
		}
		if n > 0 {
			return apperr.ErrDuplicateReview
		}

		r = models.Review{
			ContractID: c.ID,
			ReviewerID: actor.ID,
			RevieweeID: c.Counterparty(actor.ID),
			Rating:     in.Rating,
			Comment:    strings.TrimSpace(in.Comment),
		}
		if err := tx.Create(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrDuplicateReview
			}
			return fmt.Errorf("create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: r.RevieweeID,
		Kind:        models.NotifReviewReceived,
		Title:       "New review",
		Body:        fmt.Sprintf("You received a %d-star review.", r.Rating),
		Refs:        notification.Refs{ContractID: r.ContractID, ReviewID: r.ID},
	})
	return &r, nil
}

// ListForUser returns the reviews userID received, newest first, with the average rating.
func (s *ReviewService) ListForUser(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	var reviews []models.Review
	if err := s.DB.WithContext(ctx).Preload("Reviewer").
		Where("reviewee_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := &Summary{UserID: userID, Count: int64(len(reviews)), Reviews: reviews}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		out.Average = float64(total) / float64(len(reviews))
	}
	return out, nil
}
