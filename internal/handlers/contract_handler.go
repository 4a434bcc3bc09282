package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/talentlink_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/contract"
	"github.com/Windi-Fikriyansyah/talentlink_be/internal/services/review"
)

type ContractHandler struct {
	Svc     *contract.ContractService
	Reviews *review.ReviewService
}

func NewContractHandler(svc *contract.ContractService, reviews *review.ReviewService) *ContractHandler {
	return &ContractHandler{Svc: svc, Reviews: reviews}
}

func (h *ContractHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	list, err := h.Svc.ListForUser(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, list)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ct, err := h.Svc.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, ct)
}

func (h *ContractHandler) Complete(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ct, err := h.Svc.Complete(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, ct)
}

func (h *ContractHandler) Cancel(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ct, err := h.Svc.Cancel(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, ct)
}

func (h *ContractHandler) Review(c *fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req review.CreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	r, err := h.Reviews.Create(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return created(c, r)
}

// UserReviews serves GET /api/users/:id/reviews.
func (h *ContractHandler) UserReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	sum, err := h.Reviews.ListForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, sum)
}
