package api

import (
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

func exchangeCallToken(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	who := services.NewCallIdentity(exts.GetUser(c))
	tk, err := services.JoinMeeting(c.UserContext(), services.Calls, services.Rooms, meeting, who, time.Now())
	if err != nil {
		return exts.ServiceError(err, "joining the meeting")
	}

	return c.JSON(fiber.Map{
		"token":    tk,
		"identity": who.Identity,
		"endpoint": viper.GetString("calling.endpoint"),
	})
}

func listParticipants(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	if meeting.RoomOpenedAt == nil || meeting.EndedAt != nil {
		return c.JSON([]any{})
	}

	participants, err := services.Rooms.ListParticipants(c.UserContext(), meeting.ID)
	if err != nil {
		return exts.ServiceError(err, "loading the participants")
	}

	return c.JSON(participants)
}

func kickParticipant(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetUser(c)

	var data struct {
		Identity string `json:"identity" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	if err := services.KickParticipant(c.UserContext(), services.Rooms, meeting, *user, data.Identity); err != nil {
		return exts.ServiceError(err, "removing the participant")
	}

	return c.SendStatus(fiber.StatusOK)
}

func listRecordings(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	if meeting.RoomOpenedAt == nil {
		return c.JSON([]services.Recording{})
	}

	recordings, err := services.Rooms.ListRecordings(c.UserContext(), meeting.ID)
	if err != nil {
		return exts.ServiceError(err, "loading the recordings")
	}
	if recordings == nil {
		recordings = []services.Recording{}
	}

	return c.JSON(recordings)
}
