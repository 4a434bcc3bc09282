package proposal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/notification"
)

// ProposalService owns every write to proposals. Accept is the only path
// that writes a proposal, its project and a contract together.
type ProposalService struct {
	DB     *gorm.DB
	Fanout *notification.Fanout
	Log    *zap.Logger
}

func NewProposalService(db *gorm.DB, fanout *notification.Fanout, log *zap.Logger) *ProposalService {
	return &ProposalService{DB: db, Fanout: fanout, Log: log}
}

// lockProject takes the project row lock that serializes submit, accept and
// reject on the same project.
func lockProject(tx *gorm.DB, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, fmt.Errorf("lock project: %w", err)
	}
	return &project, nil
}
