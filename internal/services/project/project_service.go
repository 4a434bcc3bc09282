package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
)

type ProjectService struct {
	DB *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{DB: db}
}

type ProjectInput struct {
	Title       string
	Description string
	Budget      decimal.Decimal
	Duration    string
	Skills      []string
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if !in.Budget.IsPositive() {
		return apperr.Validation("budget must be greater than zero")
	}
	return nil
}

func skillsJSON(skills []string) (datatypes.JSON, error) {
	clean := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			clean = append(clean, s)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// Filter narrows List. Zero values are ignored.
type Filter struct {
	Status    models.ProjectStatus
	ClientID  uuid.UUID
	MinBudget decimal.NullDecimal
	MaxBudget decimal.NullDecimal
	Duration  string
	Skill     string
	Query     string
	Limit     int
	Offset    int
}

func (s *ProjectService) Create(ctx context.Context, actor models.Actor, in ProjectInput) (*models.Project, error) {
	if !actor.Is(models.RoleClient) {
		return nil, apperr.Forbidden("only clients can post projects")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	skills, err := skillsJSON(in.Skills)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}

	p := models.Project{
		ClientID:    actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Budget:      in.Budget,
		Duration:    strings.TrimSpace(in.Duration),
		Skills:      skills,
		Status:      models.ProjectOpen,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).Preload("Client").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern using ESCAPE '\'.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (s *ProjectService) List(ctx context.Context, f Filter) ([]models.Project, error) {
	q := s.DB.WithContext(ctx).Model(&models.Project{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != uuid.Nil {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.MinBudget.Valid {
		q = q.Where("budget >= ?", f.MinBudget.Decimal)
	}
	if f.MaxBudget.Valid {
		q = q.Where("budget <= ?", f.MaxBudget.Decimal)
	}
	if d := strings.TrimSpace(f.Duration); d != "" {
		q = q.Where("LOWER(duration) = ?", strings.ToLower(d))
	}
	if skill := strings.ToLower(strings.TrimSpace(f.Skill)); skill != "" {
		// skills are stored lower-cased as a JSON array of strings
		q = q.Where(`CAST(skills AS TEXT) LIKE ? ESCAPE '\'`, `%"`+escapeLike(skill)+`"%`)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var out []models.Project
	if err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// loadOwnedOpen locks the project and checks that actor owns it and it is still open.
func loadOwnedOpen(tx *gorm.DB, actor models.Actor, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if p.ClientID != actor.ID {
		return nil, apperr.Forbidden("only the project's client can change it")
	}
	if p.Status != models.ProjectOpen {
		return nil, apperr.ErrProjectNotOpen
	}
	return &p, nil
}

func (s *ProjectService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	skills, err := skillsJSON(in.Skills)
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}

	var p *models.Project
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = loadOwnedOpen(tx, actor, id)
		if err != nil {
			return err
		}
		return tx.Model(p).Updates(map[string]interface{}{
			"title":       strings.TrimSpace(in.Title),
			"description": in.Description,
			"budget":      in.Budget,
			"duration":    strings.TrimSpace(in.Duration),
			"skills":      skills,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes an open project together with its proposals.
func (s *ProjectService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := loadOwnedOpen(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&models.Proposal{}).Error; err != nil {
			return fmt.Errorf("delete proposals: %w", err)
		}
		if err := tx.Delete(p).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}
