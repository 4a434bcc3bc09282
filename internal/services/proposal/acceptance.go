package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/metrics"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

// loadForDecision loads a proposal, locks its project and checks that actor
// may decide on it and that it is still pending.
func loadForDecision(tx *gorm.DB, proposalID uuid.UUID, actor models.Actor) (*models.Proposal, *models.Project, error) {
	var found models.Proposal
	if err := tx.First(&found, "id = ?", proposalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("proposal")
		}
		return nil, nil, fmt.Errorf("load proposal: %w", err)
	}

	project, err := lockProject(tx, found.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	// Re-read under the project lock so a decision committed meanwhile is seen.
	var proposal models.Proposal
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&proposal, "id = ?", proposalID).Error; err != nil {
		return nil, nil, fmt.Errorf("reload proposal: %w", err)
	}

	if project.ClientID != actor.ID {
		return nil, nil, apperr.Forbidden("only the project's client can accept or reject proposals")
	}
	if proposal.Status != models.ProposalPending {
		return nil, nil, apperr.AlreadyProcessed("proposal is already " + string(proposal.Status))
	}
	return &proposal, project, nil
}

// Accept accepts a pending proposal. In one transaction it marks the proposal
// accepted, rejects every other pending proposal of the project, creates the
// contract with the proposal's rate and moves the project to in_progress.
// Notifications go out only after the commit.
func (s *ProposalService) Accept(ctx context.Context, proposalID uuid.UUID, actor models.Actor) (*models.Contract, error) {
	var (
		contract models.Contract
		accepted *models.Proposal
		project  *models.Project
		rejected []models.Proposal
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		accepted, project, err = loadForDecision(tx, proposalID, actor)
		if err != nil {
			return err
		}
		if project.Status != models.ProjectOpen {
			return apperr.ErrProjectNotOpen
		}

		var existing int64
		if err := tx.Model(&models.Contract{}).
			Where("proposal_id = ? OR project_id = ?", accepted.ID, project.ID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check contract: %w", err)
		}
		if existing > 0 {
			return apperr.ErrContractAlreadyExists
		}

		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", accepted.ID, models.ProposalPending).
			Update("status", models.ProposalAccepted)
		if res.Error != nil {
			return fmt.Errorf("accept proposal: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return apperr.AlreadyProcessed("proposal is no longer pending")
		}
		accepted.Status = models.ProposalAccepted

		if err := tx.Select("id", "freelancer_id").
			Where("project_id = ? AND id <> ? AND status = ?", project.ID, accepted.ID, models.ProposalPending).
			Find(&rejected).Error; err != nil {
			return fmt.Errorf("collect competing proposals: %w", err)
		}
		if len(rejected) > 0 {
			ids := make([]uuid.UUID, 0, len(rejected))
			for _, p := range rejected {
				ids = append(ids, p.ID)
			}
			if err := tx.Model(&models.Proposal{}).
				Where("id IN ? AND status = ?", ids, models.ProposalPending).
				Update("status", models.ProposalRejected).Error; err != nil {
				return fmt.Errorf("reject competing proposals: %w", err)
			}
		}

		contract = models.Contract{
			ProposalID:   accepted.ID,
			ProjectID:    project.ID,
			ClientID:     project.ClientID,
			FreelancerID: accepted.FreelancerID,
			AgreedRate:   accepted.ProposedRate,
			StartDate:    time.Now(),
			Status:       models.ContractActive,
		}
		if err := tx.Create(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.ErrContractAlreadyExists
			}
			return fmt.Errorf("create contract: %w", err)
		}

		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("status", models.ProjectInProgress).Error; err != nil {
			return fmt.Errorf("start project: %w", err)
		}
		project.Status = models.ProjectInProgress
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ProposalTransitions.WithLabelValues(string(models.ProposalAccepted)).Inc()
	metrics.ProposalTransitions.WithLabelValues(string(models.ProposalRejected)).Add(float64(len(rejected)))
	metrics.ContractsCreated.Inc()
	s.Log.Info("proposal accepted",
		zap.Stringer("proposal_id", accepted.ID),
		zap.Stringer("project_id", project.ID),
		zap.Stringer("contract_id", contract.ID),
		zap.Int("rejected", len(rejected)))

	events := make([]notification.Event, 0, len(rejected)+1)
	events = append(events, notification.Event{
		RecipientID: accepted.FreelancerID,
		Kind:        models.NotifProposalAccepted,
		Title:       "Your proposal was accepted",
		Body:        "Your proposal for \"" + project.Title + "\" was accepted and a contract has started.",
		Refs:        notification.Refs{ProjectID: project.ID, ProposalID: accepted.ID, ContractID: contract.ID},
	})
	for _, p := range rejected {
		events = append(events, notification.Event{
			RecipientID: p.FreelancerID,
			Kind:        models.NotifProposalRejected,
			Title:       "Your proposal was not selected",
			Body:        "The client chose another proposal for \"" + project.Title + "\".",
			Refs:        notification.Refs{ProjectID: project.ID, ProposalID: p.ID},
		})
	}
	s.Fanout.Emit(ctx, events...)

	contract.Proposal = accepted
	return &contract, nil
}

// Reject rejects one pending proposal. The project and other proposals are untouched.
func (s *ProposalService) Reject(ctx context.Context, proposalID uuid.UUID, actor models.Actor) (*models.Proposal, error) {
	var (
		proposal *models.Proposal
		project  *models.Project
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		proposal, project, err = loadForDecision(tx, proposalID, actor)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalPending).
			Update("status", models.ProposalRejected)
		if res.Error != nil {
			return fmt.Errorf("reject proposal: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return apperr.AlreadyProcessed("proposal is no longer pending")
		}
		proposal.Status = models.ProposalRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ProposalTransitions.WithLabelValues(string(models.ProposalRejected)).Inc()
	s.Log.Info("proposal rejected", zap.Stringer("proposal_id", proposal.ID))

	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: proposal.FreelancerID,
		Kind:        models.NotifProposalRejected,
		Title:       "Your proposal was rejected",
		Body:        "The client rejected your proposal for \"" + project.Title + "\".",
		Refs:        notification.Refs{ProjectID: project.ID, ProposalID: proposal.ID},
	})
	return proposal, nil
}
