package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}

	category, err := h.category.Create(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingLocale):
			return h.badRequest(c, "Both English and Arabic name and description are required")
		case errors.Is(err, services.ErrDuplicateCategory):
			return h.badRequest(c, "Category with the same name already exists")
		}
		return h.serverError(c, "Server error creating category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.badRequest(c, "Invalid category ID")
	}
	var req services.CategoryInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}

	category, err := h.category.Update(c.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "Category not found")
		case errors.Is(err, services.ErrDefaultCategory):
			return h.badRequest(c, "Cannot modify default category")
		case errors.Is(err, services.ErrDuplicateCategory):
			return h.badRequest(c, "Category with the same name already exists")
		}
		return h.serverError(c, "Server error updating category", err)
	}
	return c.JSON(category)
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.badRequest(c, "Invalid category ID")
	}

	if err := h.category.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "Category not found")
		case errors.Is(err, services.ErrDefaultCategory):
			return h.badRequest(c, "Cannot delete default category")
		}
		return h.serverError(c, "Server error deleting category", err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted successfully"})
}

func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	filter := repository.ListFilter{
		AccountStatus: c.Query("accountStatus"),
	}
	switch c.Query("userType") {
	case "client":
		filter.Role = models.RoleClient
	case "provider":
		filter.Role = models.RoleProvider
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.admin.ListUsers(c.Context(), filter, page, limit)
	if err != nil {
		return h.serverError(c, "Server error fetching users", err)
	}
	return c.JSON(result)
}

func (h *Handler) GetUserByID(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return h.badRequest(c, "Invalid user ID")
	}

	user, err := h.admin.GetUser(c.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error fetching user", err)
	}
	return c.JSON(user)
}

func (h *Handler) SuspendUser(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return h.badRequest(c, "Invalid user ID")
	}
	if err := h.admin.SuspendUser(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error suspending user", err)
	}
	return c.JSON(fiber.Map{"message": "User account suspended"})
}

func (h *Handler) ReactivateUser(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return h.badRequest(c, "Invalid user ID")
	}
	if err := h.admin.ReactivateUser(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error reactivating user", err)
	}
	return c.JSON(fiber.Map{"message": "User account reactivated"})
}

type setRankReq struct {
	Rank *int `json:"rank" validate:"required,min=0,max=10"`
}

func (h *Handler) SetUserRank(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return h.badRequest(c, "Invalid user ID")
	}
	var req setRankReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	if err := h.admin.SetRank(c.Context(), id, *req.Rank); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRank):
			return h.badRequest(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error updating rank", err)
	}
	return c.JSON(fiber.Map{"message": "User rank updated"})
}

func (h *Handler) GetUserGrowth(c *fiber.Ctx) error {
	report, err := h.analytics.UserGrowth(c.Context())
	if err != nil {
		return h.serverError(c, "Server error computing user growth", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": report})
}

func (h *Handler) GetUserDistribution(c *fiber.Ctx) error {
	client := c.Query("client") == "true"
	provider := c.Query("provider") == "true"

	dist, err := h.analytics.UserDistribution(c.Context(), client, provider)
	if err != nil {
		if errors.Is(err, services.ErrFilterRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "At least one of 'client' or 'provider' must be true.",
			})
		}
		return h.serverError(c, "Server error computing user distribution", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": dist})
}

func (h *Handler) GetUserStatusStats(c *fiber.Ctx) error {
	stats, err := h.analytics.UserStatusStats(c.Context())
	if err != nil {
		return h.serverError(c, "Server error computing status stats", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

func (h *Handler) GetUsersByCategory(c *fiber.Ctx) error {
	stats, err := h.analytics.UsersByCategory(c.Context())
	if err != nil {
		return h.serverError(c, "Server error computing users by category", err)
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}
