package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		api.Get("/users/me", getUserinfo)

		meetings := api.Group("/meetings").Name("Meetings API")
		{
			meetings.Get("/", listMeetings)
			meetings.Post("/", createMeeting)
			meetings.Get("/:meetingId", getMeeting)
			meetings.Delete("/:meetingId", endMeeting)
			meetings.Get("/:meetingId/invitation", getInvitation)
			meetings.Get("/:meetingId/invitation.ics", getInvitationCalendar)

			meetings.Post("/:meetingId/token", exchangeCallToken)
			meetings.Get("/:meetingId/participants", listParticipants)
			meetings.Delete("/:meetingId/participants", kickParticipant)
			meetings.Get("/:meetingId/recordings", listRecordings)
		}
	}
}
