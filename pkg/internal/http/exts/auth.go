package exts

import (
	"strings"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const SessionCookieName = "session_token"

// AuthMiddleware attaches the session user to the request when a valid token
// is present. Requests without one pass through as visitors.
func AuthMiddleware(c *fiber.Ctx) error {
	tk := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))
	if len(tk) == 0 {
		tk = c.Cookies(SessionCookieName)
	}
	if len(tk) == 0 {
		return c.Next()
	}

	claims, err := services.ParseSessionToken(tk)
	if err != nil {
		// Guests carrying a stale session continue as visitors.
		if c.QueryBool("guest") {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	user := claims.Account()
	if services.Identities != nil {
		if synced, err := services.Identities.SyncAccount(c.UserContext(), user); err != nil {
			log.Warn().Err(err).Str("account", user.ID).Msg("Unable to sync account from session.")
		} else {
			user = synced
		}
	}

	c.Locals("user", user)
	return c.Next()
}

func GetUser(c *fiber.Ctx) *models.Account {
	if user, ok := c.Locals("user").(models.Account); ok {
		return &user
	}
	return nil
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if GetUser(c) == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "you need sign in before continue")
	}
	return nil
}
