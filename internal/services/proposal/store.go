package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

type SubmitInput struct {
	ProjectID    uuid.UUID
	CoverLetter  string
	ProposedRate decimal.Decimal
}

// Submit creates a pending proposal from actor on the project.
func (s *ProposalService) Submit(ctx context.Context, actor models.Actor, in SubmitInput) (*models.Proposal, error) {
	cover := strings.TrimSpace(in.CoverLetter)
	if cover == "" {
		return nil, apperr.Validation("cover_letter is required")
	}
	if !in.ProposedRate.IsPositive() {
		return nil, apperr.Validation("proposed_rate must be greater than zero")
	}

	var (
		proposal models.Proposal
		project  *models.Project
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		project, err = lockProject(tx, in.ProjectID)
		if err != nil {
			return err
		}
		if project.ClientID == actor.ID {
			return apperr.ErrSelfProposal
		}
		if !actor.Is(models.RoleFreelancer) {
			return apperr.Forbidden("only freelancers can submit proposals")
		}
		if project.Status != models.ProjectOpen {
			return apperr.ErrProjectNotOpen
		}

		var existing int64
		if err := tx.Model(&models.Proposal{}).
			Where("project_id = ? AND freelancer_id = ?", project.ID, actor.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check duplicate proposal: %w", err)
		}
		if existing > 0 {
			return apperr.ErrDuplicateProposal
		}

		proposal = models.Proposal{
			ProjectID:    project.ID,
			FreelancerID: actor.ID,
			CoverLetter:  cover,
			ProposedRate: in.ProposedRate,
			Status:       models.ProposalPending,
		}
		// The unique index is the real guard; the count above only gives a
		// friendlier path for the common case.
		if err := tx.Create(&proposal).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrDuplicateProposal
			}
			return fmt.Errorf("create proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ProposalsSubmitted.Inc()
	s.Log.Info("proposal submitted",
		zap.Stringer("proposal_id", proposal.ID),
		zap.Stringer("project_id", project.ID),
		zap.Stringer("freelancer_id", actor.ID))

	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: project.ClientID,
		Kind:        models.NotifProposalReceived,
		Title:       "New proposal received",
		Body:        "A freelancer submitted a proposal for \"" + project.Title + "\".",
		Refs:        notification.Refs{ProjectID: project.ID, ProposalID: proposal.ID},
	})

	return &proposal, nil
}

// Get returns a proposal visible to its freelancer or the project's client.
func (s *ProposalService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Proposal, error) {
	var p models.Proposal
	if err := s.DB.WithContext(ctx).Preload("Project").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("proposal")
		}
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	if p.FreelancerID != actor.ID && (p.Project == nil || p.Project.ClientID != actor.ID) {
		return nil, apperr.Forbidden("you can only view your own proposals")
	}
	return &p, nil
}

// ListForProject returns a project's proposals to the project's client only.
func (s *ProposalService) ListForProject(ctx context.Context, projectID uuid.UUID, actor models.Actor) ([]models.Proposal, error) {
	db := s.DB.WithContext(ctx)

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.ClientID != actor.ID {
		return nil, apperr.Forbidden("only the project's client can view its proposals")
	}

	var out []models.Proposal
	if err := db.Preload("Freelancer").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}

// ListForFreelancer returns the actor's own proposals, newest first.
func (s *ProposalService) ListForFreelancer(ctx context.Context, actor models.Actor) ([]models.Proposal, error) {
	var out []models.Proposal
	if err := s.DB.WithContext(ctx).Preload("Project").
		Where("freelancer_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}
