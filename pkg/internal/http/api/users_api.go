package api

import (
	"git.solsynth.dev/hypernet/meeting/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func getUserinfo(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}

	return c.JSON(exts.GetUser(c))
}
