package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/khidmah/backend/internal/services"
)

type Handler struct {
	auth      *services.AuthService
	admin     *services.AdminService
	analytics *services.AnalyticsService
	category  *services.CategoryService
	discovery *services.DiscoveryService
	messages  *services.MessageService
	reviews   *services.ReviewService
	google    *oauth2.Config
	validate  *validator.Validate
	log       *zap.Logger
}

type Deps struct {
	Auth      *services.AuthService
	Admin     *services.AdminService
	Analytics *services.AnalyticsService
	Category  *services.CategoryService
	Discovery *services.DiscoveryService
	Messages  *services.MessageService
	Reviews   *services.ReviewService
	Google    *oauth2.Config
	Log       *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		auth:      d.Auth,
		admin:     d.Admin,
		analytics: d.Analytics,
		category:  d.Category,
		discovery: d.Discovery,
		messages:  d.Messages,
		reviews:   d.Reviews,
		google:    d.Google,
		validate:  validator.New(),
		log:       d.Log,
	}
}

// serverError logs the real cause and returns a generic body so internals
// never leak to callers.
func (h *Handler) serverError(c *fiber.Ctx, msg string, err error) error {
	h.log.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": msg})
}

func (h *Handler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}

func (h *Handler) notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": msg})
}
