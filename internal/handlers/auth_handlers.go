package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/khidmah/backend/internal/middleware"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/services"
)

type signupResponse struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	result, err := h.auth.Signup(c.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return h.badRequest(c, "User already exists with this email or phone number")
		}
		return h.serverError(c, "Server error during signup", err)
	}
	return c.Status(fiber.StatusCreated).JSON(signupResponse{
		ID:       result.User.ID.Hex(),
		FullName: result.User.FullName,
		Email:    result.User.Email,
		Token:    result.Token,
	})
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return h.badRequest(c, "Invalid credentials")
		}
		return h.serverError(c, "Server error during login", err)
	}
	return c.JSON(fiber.Map{
		"_id":           result.User.ID.Hex(),
		"fullName":      result.User.FullName,
		"email":         result.User.Email,
		"isClient":      result.User.IsClient,
		"isProvider":    result.User.IsProvider,
		"accountStatus": result.User.AccountStatus,
		"token":         result.Token,
	})
}

func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	profile, err := h.auth.CurrentUser(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error fetching user profile", err)
	}
	return c.JSON(profile)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileUpdateInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	updated, err := h.auth.UpdateProfile(c.Context(), user.ID, req)
	if err != nil {
		return h.serverError(c, "Server error updating profile", err)
	}
	return c.JSON(updated)
}

func (h *Handler) CreateProviderProfile(c *fiber.Ctx) error {
	var req services.ProviderProfileInput
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	updated, err := h.auth.CompleteProviderProfile(c.Context(), user.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryRequired),
			errors.Is(err, services.ErrUnknownCategory),
			errors.Is(err, services.ErrLocationRequired):
			return h.badRequest(c, err.Error())
		}
		return h.serverError(c, "Server error completing provider profile", err)
	}
	return c.JSON(updated)
}

type clientProfileReq struct {
	Location *models.Location `json:"location" validate:"required"`
}

func (h *Handler) CreateClientProfile(c *fiber.Ctx) error {
	var req clientProfileReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	user := middleware.CurrentUser(c)
	updated, err := h.auth.CompleteClientProfile(c.Context(), user.ID, req.Location)
	if err != nil {
		if errors.Is(err, services.ErrLocationRequired) {
			return h.badRequest(c, err.Error())
		}
		return h.serverError(c, "Server error completing client profile", err)
	}
	return c.JSON(updated)
}

func (h *Handler) ToggleOnline(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	online, err := h.auth.ToggleOnline(c.Context(), user)
	if err != nil {
		return h.serverError(c, "Server error toggling online status", err)
	}
	return c.JSON(fiber.Map{"isOnline": online})
}

type submitVerificationReq struct {
	Images []string `json:"images" validate:"required"`
}

func (h *Handler) SubmitVerification(c *fiber.Ctx) error {
	var req submitVerificationReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}

	user := middleware.CurrentUser(c)
	if err := h.auth.SubmitVerification(c.Context(), user.ID, req.Images); err != nil {
		if errors.Is(err, services.ErrNotEnoughImages) {
			return h.badRequest(c, "Please upload at least 3 images.")
		}
		return h.serverError(c, "Server error during verification upload", err)
	}
	return c.JSON(fiber.Map{
		"message": "Verification images uploaded successfully. Account status set to pending.",
		"images":  req.Images,
	})
}

type resetPasswordReq struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "invalid body")
	}
	if ok, err := h.validateBody(c, &req); !ok {
		return err
	}

	if err := h.auth.ResetPassword(c.Context(), req.Email, req.NewPassword); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return h.notFound(c, "User not found")
		}
		return h.serverError(c, "Server error resetting password", err)
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}
