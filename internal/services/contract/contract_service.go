package contract

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
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

type ContractService struct {
	DB     *gorm.DB
	Fanout *notification.Fanout
	Log    *zap.Logger
}

func NewContractService(db *gorm.DB, fanout *notification.Fanout, log *zap.Logger) *ContractService {
	return &ContractService{DB: db, Fanout: fanout, Log: log}
}

// ListForUser returns contracts where actor is the client or the freelancer.
func (s *ContractService) ListForUser(ctx context.Context, actor models.Actor) ([]models.Contract, error) {
	var out []models.Contract
	if err := s.DB.WithContext(ctx).Preload("Project").
		Where("client_id = ? OR freelancer_id = ?", actor.ID, actor.ID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return out, nil
}

func (s *ContractService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Contract, error) {
	var c models.Contract
	if err := s.DB.WithContext(ctx).Preload("Project").Preload("Proposal").First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("contract")
		}
		return nil, fmt.Errorf("load contract: %w", err)
	}
	if !c.IsParty(actor.ID) {
		return nil, apperr.Forbidden("you are not a party to this contract")
	}
	return &c, nil
}

// Complete closes an active contract; only the client may do it.
func (s *ContractService) Complete(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Contract, error) {
	c, err := s.close(ctx, actor, id, models.ContractCompleted, models.ProjectCompleted, func(c *models.Contract) error {
		if actor.ID != c.ClientID {
			return apperr.Forbidden("only the client can complete a contract")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: c.FreelancerID,
		Kind:        models.NotifContractCompleted,
		Title:       "Contract completed",
		Body:        "The client marked your contract as completed.",
		Refs:        notification.Refs{ContractID: c.ID, ProjectID: c.ProjectID},
	})
	return c, nil
}

// Cancel closes an active contract; either party may do it.
func (s *ContractService) Cancel(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Contract, error) {
	c, err := s.close(ctx, actor, id, models.ContractCancelled, models.ProjectCancelled, func(c *models.Contract) error {
		if !c.IsParty(actor.ID) {
			return apperr.Forbidden("you are not a party to this contract")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Fanout.Emit(ctx, notification.Event{
		RecipientID: c.Counterparty(actor.ID),
		Kind:        models.NotifContractCancelled,
		Title:       "Contract cancelled",
		Body:        "The other party cancelled the contract.",
		Refs:        notification.Refs{ContractID: c.ID, ProjectID: c.ProjectID},
	})
	return c, nil
}

func (s *ContractService) close(ctx context.Context, actor models.Actor, id uuid.UUID, to models.ContractStatus, projectTo models.ProjectStatus, authorize func(*models.Contract) error) (*models.Contract, error) {
	var c models.Contract
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("contract")
			}
			return fmt.Errorf("load contract: %w", err)
		}
		if err := authorize(&c); err != nil {
			return err
		}
		if c.Status != models.ContractActive {
			return apperr.AlreadyProcessed("contract is already " + string(c.Status))
		}

		now := time.Now()
		if err := tx.Model(&c).Updates(map[string]interface{}{
			"status":   to,
			"end_date": now,
		}).Error; err != nil {
			return fmt.Errorf("update contract: %w", err)
		}
		c.Status = to
		c.EndDate = &now

		res := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", c.ProjectID, models.ProjectInProgress).
			Update("status", projectTo)
		if res.Error != nil {
			return fmt.Errorf("update project: %w", res.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("contract closed",
		zap.Stringer("contract_id", c.ID),
		zap.String("status", string(c.Status)),
		zap.Stringer("actor_id", actor.ID))
	return &c, nil
}
