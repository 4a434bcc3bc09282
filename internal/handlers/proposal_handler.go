package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/proposal"
)

type ProposalHandler struct {
	Svc *proposal.ProposalService
}

func NewProposalHandler(svc *proposal.ProposalService) *ProposalHandler {
	return &ProposalHandler{Svc: svc}
}

type submitReq struct {
	ProjectID    uuid.UUID       `json:"project_id"`
	CoverLetter  string          `json:"cover_letter"`
	ProposedRate decimal.Decimal `json:"proposed_rate"`
}

func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	var req submitReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.Svc.Submit(c.UserContext(), actor, proposal.SubmitInput{
		ProjectID:    req.ProjectID,
		CoverLetter:  req.CoverLetter,
		ProposedRate: req.ProposedRate,
	})
	if err != nil {
		return err
	}
	return created(c, p)
}

func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *ProposalHandler) ListForProject(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	list, err := h.Svc.ListForProject(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ProposalHandler) Mine(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.ListForFreelancer(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contract, err := h.Svc.Accept(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "proposal accepted",
		"data":    contract,
	})
}

func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Reject(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "proposal rejected",
		"data":    p,
	})
}
