package api

import (
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func resolveLocation(name string) (*time.Location, error) {
	if len(name) == 0 {
		name = viper.GetString("meeting.timezone")
	}
	if len(name) == 0 {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

func queryLocation(c *fiber.Ctx) (*time.Location, error) {
	loc, err := resolveLocation(c.Query("timezone"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return loc, nil
}

// loadMeeting fetches the meeting in the route and checks the requester may see it.
func loadMeeting(c *fiber.Ctx) (models.Meeting, error) {
	user := exts.GetUser(c)
	guest := c.QueryBool("guest")
	if user == nil && !guest {
		return models.Meeting{}, exts.ServiceError(services.ErrUnauthenticated, "loading the meeting")
	}

	meeting, err := services.Calls.GetCall(c.UserContext(), c.Params("meetingId"))
	if err != nil {
		return meeting, exts.ServiceError(err, "loading the meeting")
	}
	if err := services.CheckMeetingAccess(meeting, user, guest); err != nil {
		return meeting, exts.ServiceError(err, "loading the meeting")
	}

	return meeting, nil
}

func meetingLinks(meeting models.Meeting) fiber.Map {
	frontend := viper.GetString("frontend")
	return fiber.Map{
		"link":       services.MeetingLink(frontend, meeting.ID, false),
		"guest_link": services.MeetingLink(frontend, meeting.ID, true),
	}
}

// invitationOf renders the meeting start time in loc.
func invitationOf(meeting models.Meeting, loc *time.Location) services.Invitation {
	link := services.MeetingLink(viper.GetString("frontend"), meeting.ID, false)

	var startsAt *time.Time
	if meeting.StartsAt != nil {
		startsAt = lo.ToPtr(meeting.StartsAt.In(loc))
	}

	return services.FormatInvitation(link, startsAt, meeting.Description())
}
