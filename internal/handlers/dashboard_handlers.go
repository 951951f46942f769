package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/repository"
)

func (h *Handler) GetAllCategories(c *fiber.Ctx) error {
	categories, err := h.category.ListPublic(c.Context())
	if err != nil {
		return h.serverError(c, "Server error fetching categories", err)
	}
	return c.JSON(categories)
}

func (h *Handler) SearchCategories(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return h.badRequest(c, "Search query is required")
	}
	categories, err := h.category.Search(c.Context(), query)
	if err != nil {
		return h.serverError(c, "Server error during category search", err)
	}
	return c.JSON(categories)
}

// GetProvidersByCategory lists the category's providers ranked by curated
// rank then distance from the caller.
func (h *Handler) GetProvidersByCategory(c *fiber.Ctx) error {
	categoryID, err := primitive.ObjectIDFromHex(c.Params("categoryId"))
	if err != nil {
		return h.badRequest(c, "Invalid category ID")
	}

	latRaw := c.Query("latitude")
	lngRaw := c.Query("longitude")
	if latRaw == "" || lngRaw == "" {
		return h.badRequest(c, "Longitude and latitude are required")
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		return h.badRequest(c, "Longitude and latitude must be numbers")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.discovery.FindProviders(c.Context(), categoryID, lat, lng, page, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "Category not found")
		}
		return h.serverError(c, "Server error fetching providers", err)
	}
	return c.JSON(result)
}
