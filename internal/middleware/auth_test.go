package middleware_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/khidmah/backend/internal/auth"
	"github.com/khidmah/backend/internal/middleware"
	"github.com/khidmah/backend/internal/models"
	"github.com/khidmah/backend/internal/repository"
)

type stubUserLoader struct {
	user *models.User
	err  error
}

func (s *stubUserLoader) FindByID(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newProtectedApp(jwtManager *auth.JWTManager, loader *stubUserLoader, adminOnly bool) *fiber.App {
	app := fiber.New()
	chain := []fiber.Handler{middleware.Protect(jwtManager, loader)}
	if adminOnly {
		chain = append(chain, middleware.AdminOnly())
	}
	chain = append(chain, func(c *fiber.Ctx) error {
		u := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"id": u.ID.Hex()})
	})
	app.Get("/secure", chain...)
	return app
}

func TestProtect_NoToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	app := newProtectedApp(jwtManager, &stubUserLoader{}, false)

	resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_BadToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	app := newProtectedApp(jwtManager, &stubUserLoader{}, false)

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_UnknownUser(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	app := newProtectedApp(jwtManager, &stubUserLoader{err: repository.ErrNotFound}, false)
	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtect_AttachesUser(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID()}
	token, err := jwtManager.Generate(user.ID.Hex())
	require.NoError(t, err)

	app := newProtectedApp(jwtManager, &stubUserLoader{user: user}, false)
	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminOnly(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	regular := &models.User{ID: primitive.NewObjectID()}
	token, err := jwtManager.Generate(regular.ID.Hex())
	require.NoError(t, err)

	app := newProtectedApp(jwtManager, &stubUserLoader{user: regular}, true)
	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin := &models.User{ID: primitive.NewObjectID(), IsAdmin: true}
	adminToken, err := jwtManager.Generate(admin.ID.Hex())
	require.NoError(t, err)

	adminApp := newProtectedApp(jwtManager, &stubUserLoader{user: admin}, true)
	adminReq := httptest.NewRequest("GET", "/secure", nil)
	adminReq.Header.Set("Authorization", "Bearer "+adminToken)
	adminResp, err := adminApp.Test(adminReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, adminResp.StatusCode)
}
