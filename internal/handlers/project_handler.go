package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/models"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/project"
)

type ProjectHandler struct {
	Svc *project.ProjectService
}

func NewProjectHandler(svc *project.ProjectService) *ProjectHandler {
	return &ProjectHandler{Svc: svc}
}

type projectReq struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	Duration    string          `json:"duration"`
	Skills      []string        `json:"skills"`
}

func (r projectReq) input() project.ProjectInput {
	return project.ProjectInput{
		Title:       r.Title,
		Description: r.Description,
		Budget:      r.Budget,
		Duration:    r.Duration,
		Skills:      r.Skills,
	}
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var req projectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Svc.Create(c.UserContext(), actor, req.input())
	if err != nil {
		return err
	}
	return created(c, p)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func queryDecimal(c *fiber.Ctx, key string) (decimal.NullDecimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, apperr.Validation("invalid " + key)
	}
	return decimal.NewNullDecimal(d), nil
}

// List serves GET /api/projects?status=&client_id=&min_budget=&max_budget=&duration=&skill=&q=&limit=&offset=
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	f := project.Filter{
		Status:   models.ProjectStatus(c.Query("status")),
		Duration: c.Query("duration"),
		Skill:    c.Query("skill"),
		Query:    c.Query("q"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Validation("invalid client_id")
		}
		f.ClientID = id
	}
	var err error
	if f.MinBudget, err = queryDecimal(c, "min_budget"); err != nil {
		return err
	}
	if f.MaxBudget, err = queryDecimal(c, "max_budget"); err != nil {
		return err
	}

	list, err := h.Svc.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req projectReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Svc.Update(c.UserContext(), actor, id, req.input())
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "project deleted"})
}
