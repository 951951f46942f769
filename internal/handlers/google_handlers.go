package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
)

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// GoogleStart redirects to Google's consent screen with a state cookie.
func (h *Handler) GoogleStart(c *fiber.Ctx) error {
	if h.google == nil {
		return h.notFound(c, "Google sign-in is not configured")
	}
	state := randomState(32)
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})
	return c.Redirect(h.google.AuthCodeURL(state, oauth2.AccessTypeOffline), fiber.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleCallback exchanges the code, fetches the profile, and issues a token
// for the linked or auto-provisioned account.
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if h.google == nil {
		return h.notFound(c, "Google sign-in is not configured")
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return h.badRequest(c, "missing code or state")
	}
	if c.Cookies("oauth_state") != state {
		return h.badRequest(c, "invalid state")
	}

	tok, err := h.google.Exchange(c.Context(), code)
	if err != nil {
		return h.badRequest(c, "failed to exchange code")
	}

	client := h.google.Client(c.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return h.serverError(c, "Server error fetching Google profile", err)
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return h.serverError(c, "Server error decoding Google profile", err)
	}
	if info.ID == "" || info.Email == "" {
		return h.badRequest(c, "incomplete Google profile")
	}

	result, err := h.auth.GoogleLogin(c.Context(), info.ID, info.Email, info.Name, info.Picture)
	if err != nil {
		return h.serverError(c, "Server error during Google sign-in", err)
	}
	return c.JSON(fiber.Map{
		"_id":      result.User.ID.Hex(),
		"fullName": result.User.FullName,
		"email":    result.User.Email,
		"token":    result.Token,
	})
}
