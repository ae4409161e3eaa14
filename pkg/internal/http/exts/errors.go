package exts

import (
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var statusOfErrors = []struct {
	err    error
	status int
}{
	{services.ErrMeetingNotFound, fiber.StatusNotFound},
	{services.ErrUnauthenticated, fiber.StatusUnauthorized},
	{services.ErrMeetingForbidden, fiber.StatusForbidden},
	{services.ErrNotMeetingCreator, fiber.StatusForbidden},
	{services.ErrMeetingEnded, fiber.StatusGone},
	{services.ErrMeetingNotStarted, fiber.StatusTooEarly},
	{services.ErrInvalidStartTime, fiber.StatusBadRequest},
	{services.ErrParticipantsUnresolved, fiber.StatusBadRequest},
}

// ServiceError turns a service failure into the response the user sees.
// Known conditions keep their message; anything else is logged and reported
// as a generic failure of action.
func ServiceError(err error, action string) error {
	for _, item := range statusOfErrors {
		if errors.Is(err, item.err) {
			return fiber.NewError(item.status, item.err.Error())
		}
	}

	log.Error().Err(err).Msgf("An error occurred when %s.", action)
	return fiber.NewError(fiber.StatusBadGateway, fmt.Sprintf("something went wrong while %s", action))
}
