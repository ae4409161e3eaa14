package exts

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware)
	app.Get("/visitor", func(c *fiber.Ctx) error {
		if GetUser(c) != nil {
			return c.SendString("user")
		}
		return c.SendString("visitor")
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if err := EnsureAuthenticated(c); err != nil {
			return err
		}
		return c.JSON(GetUser(c))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	viper.Set("security.session_secret", "test-secret")
	t.Cleanup(func() { viper.Set("security.session_secret", "") })

	account := models.Account{ID: "alice", Name: "alice", Email: "alice@x.com"}
	tk, err := services.CreateSessionToken(account, time.Hour)
	require.NoError(t, err)

	app := newAuthApp()

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tk)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got models.Account
		require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "alice", got.ID)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
		req.Header.Set(fiber.HeaderCookie, SessionCookieName+"="+tk)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("visitor", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/whoami", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stale cookie with guest flag", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/visitor?guest=true", nil)
		req.Header.Set(fiber.HeaderCookie, SessionCookieName+"=expired")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "visitor", string(body))
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var data struct {
			Description string `json:"description" validate:"max=5"`
		}
		if err := BindAndValidate(c, &data); err != nil {
			return err
		}
		return c.SendString(data.Description)
	})

	send := func(body string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, send(`{"description":"short"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"description":"too long"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(`{"description":`))
}
