package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/middleware"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req services.SendMessageInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	msg, err := h.messages.Send(c.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "Recipient not found")
		case errors.Is(err, services.ErrUnknownCategory):
			return h.badRequest(c, "A valid category is required for job offers")
		}
		return h.serverError(c, "Server error sending message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handler) GetConversation(c *fiber.Ctx) error {
	with, err := primitive.ObjectIDFromHex(c.Query("with"))
	if err != nil {
		return h.badRequest(c, "A valid 'with' user ID is required")
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	user := middleware.CurrentUser(c)
	msgs, err := h.messages.Conversation(c.Context(), user.ID, with, page, limit)
	if err != nil {
		return h.serverError(c, "Server error fetching conversation", err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "currentPage": page})
}

type jobOfferStatusReq struct {
	Status string `json:"status" validate:"required,oneof=accepted completed"`
}

func (h *Handler) UpdateJobOfferStatus(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.badRequest(c, "Invalid message ID")
	}
	var req jobOfferStatusReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	msg, err := h.messages.UpdateJobOfferStatus(c.Context(), user.ID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "Message not found")
		case errors.Is(err, services.ErrNotJobOffer),
			errors.Is(err, services.ErrBadTransition):
			return h.badRequest(c, err.Error())
		case errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
		}
		return h.serverError(c, "Server error updating job offer", err)
	}
	return c.JSON(msg)
}

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	var req services.CreateReviewInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	review, err := h.reviews.Create(c.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "Job offer not found")
		case errors.Is(err, services.ErrNotJobOffer),
			errors.Is(err, services.ErrNotCompleted),
			errors.Is(err, services.ErrAlreadyReviewed):
			return h.badRequest(c, err.Error())
		case errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
		}
		return h.serverError(c, "Server error creating review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) GetUserReviews(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.badRequest(c, "Invalid user ID")
	}
	list, err := h.reviews.ListForUser(c.Context(), id)
	if err != nil {
		return h.serverError(c, "Server error fetching reviews", err)
	}
	return c.JSON(list)
}
