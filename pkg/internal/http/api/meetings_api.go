package api

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func listMeetings(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetUser(c)

	meetings, err := services.ListMeetings(c.UserContext(), services.Calls, user.ID, time.Now())
	if err != nil {
		return exts.ServiceError(err, "loading your meetings")
	}

	return c.JSON(fiber.Map{
		"count": len(meetings),
		"data":  meetings,
	})
}

func createMeeting(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetUser(c)

	var data struct {
		Description  string `json:"description" validate:"max=500"`
		StartTime    string `json:"start_time"`
		Timezone     string `json:"timezone"`
		Participants string `json:"participants"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	loc, err := resolveLocation(data.Timezone)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	meeting, err := services.ComposeMeeting(
		c.UserContext(),
		services.Calls,
		services.Identities,
		services.MeetingDraft{
			Description:       data.Description,
			StartTime:         data.StartTime,
			Location:          loc,
			ParticipantEmails: services.SplitParticipantEmails(data.Participants),
		},
		user.ID,
	)
	if err != nil {
		return exts.ServiceError(err, "creating the meeting")
	}

	resp := meetingLinks(meeting)
	resp["meeting"] = meeting
	resp["invitation"] = invitationOf(meeting, loc)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func getMeeting(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	resp := meetingLinks(meeting)
	resp["meeting"] = meeting
	resp["status"] = services.ClassifyMeeting(meeting, time.Now())
	return c.JSON(resp)
}

func getInvitation(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}
	loc, err := queryLocation(c)
	if err != nil {
		return err
	}

	return c.JSON(invitationOf(meeting, loc))
}

func getInvitationCalendar(c *fiber.Ctx) error {
	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	link := meetingLinks(meeting)["link"].(string)
	raw, err := services.BuildInvitationCalendar(meeting, link, time.Now())
	if err != nil {
		return exts.ServiceError(err, "building the calendar invitation")
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"meeting-%s.ics\"", meeting.ID))
	return c.Send(raw)
}

func endMeeting(c *fiber.Ctx) error {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := exts.GetUser(c)

	meeting, err := loadMeeting(c)
	if err != nil {
		return err
	}

	if meeting, err = services.EndMeeting(c.UserContext(), services.Calls, services.Rooms, meeting, *user); err != nil {
		return exts.ServiceError(err, "ending the meeting")
	}

	return c.JSON(meeting)
}
