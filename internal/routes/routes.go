package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/khidmah/backend/internal/handlers"
	"github.com/khidmah/backend/internal/middleware"
)

// Setup mounts every route group. protect loads the authenticated user;
// authLimit throttles the credential endpoints.
func Setup(app *fiber.App, h *handlers.Handler, protect fiber.Handler, authLimit fiber.Handler) {
	adminOnly := middleware.AdminOnly()

	auth := app.Group("/api/auth")
	auth.Post("/signup", authLimit, h.Signup)
	auth.Post("/login", authLimit, h.Login)
	auth.Post("/reset-password", authLimit, h.ResetPassword)
	auth.Get("/me", protect, h.GetCurrentUser)
	auth.Put("/profile", protect, h.UpdateProfile)
	auth.Post("/provider-profile", protect, h.CreateProviderProfile)
	auth.Post("/client-profile", protect, h.CreateClientProfile)
	auth.Put("/toggle-online", protect, h.ToggleOnline)
	auth.Post("/submitVerification", protect, h.SubmitVerification)
	auth.Get("/google/start", h.GoogleStart)
	auth.Get("/google/callback", h.GoogleCallback)

	dashboard := app.Group("/api/user/dashboard")
	dashboard.Get("/categories", h.GetAllCategories)
	dashboard.Get("/categories/search", h.SearchCategories)
	dashboard.Get("/categories/:categoryId/providers", protect, h.GetProvidersByCategory)

	admin := app.Group("/api/admin", protect, adminOnly)
	admin.Post("/categories", h.CreateCategory)
	admin.Put("/categories/:id", h.UpdateCategory)
	admin.Delete("/categories/:id", h.DeleteCategory)
	admin.Get("/users", h.GetAllUsers)
	admin.Get("/user/:id", h.GetUserByID)
	admin.Put("/user/:userId/suspend", h.SuspendUser)
	admin.Put("/user/:userId/reactivate", h.ReactivateUser)
	admin.Put("/user/:userId/rank", h.SetUserRank)
	admin.Get("/user-growth", h.GetUserGrowth)
	admin.Get("/user-distribution", h.GetUserDistribution)
	admin.Get("/user-status", h.GetUserStatusStats)
	admin.Get("/users-by-category", h.GetUsersByCategory)

	messages := app.Group("/api/messages", protect)
	messages.Post("/", h.SendMessage)
	messages.Get("/", h.GetConversation)
	messages.Put("/:id/status", h.UpdateJobOfferStatus)

	app.Post("/api/reviews", protect, h.CreateReview)
	app.Get("/api/users/:id/reviews", h.GetUserReviews)
}
