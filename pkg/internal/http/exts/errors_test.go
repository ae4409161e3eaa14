package exts

import (
	"errors"
	"fmt"
	"testing"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrMeetingNotFound, fiber.StatusNotFound},
		{services.ErrUnauthenticated, fiber.StatusUnauthorized},
		{services.ErrMeetingForbidden, fiber.StatusForbidden},
		{services.ErrNotMeetingCreator, fiber.StatusForbidden},
		{services.ErrMeetingEnded, fiber.StatusGone},
		{fmt.Errorf("%w: %q", services.ErrInvalidStartTime, "soon"), fiber.StatusBadRequest},
		{services.ErrParticipantsUnresolved, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var fe *fiber.Error
			require.ErrorAs(t, ServiceError(tt.err, "testing"), &fe)
			assert.Equal(t, tt.status, fe.Code)
		})
	}

	var fe *fiber.Error
	require.ErrorAs(t, ServiceError(errors.New("connection refused"), "creating the meeting"), &fe)
	assert.Equal(t, fiber.StatusBadGateway, fe.Code)
	assert.Equal(t, "something went wrong while creating the meeting", fe.Message)
}
