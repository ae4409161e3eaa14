package services

import (
	"bytes"
	"net/url"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/emersion/go-ical"
)

const calendarProductID = "-//Solsynth LLC//HyperNet Meeting//EN"

// BuildInvitationCalendar renders the meeting as an iCalendar invite.
func BuildInvitationCalendar(meeting models.Meeting, link string, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)
	cal.Props.SetText(ical.PropMethod, "PUBLISH")

	invitation := FormatInvitation(link, nil, meeting.Description())

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, meeting.ID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	if meeting.StartsAt != nil {
		event.Props.SetDateTime(ical.PropDateTimeStart, meeting.StartsAt.UTC())
	}
	event.Props.SetText(ical.PropSummary, invitation.Subject)
	event.Props.SetText(ical.PropDescription, invitation.Body)
	if u, err := url.Parse(link); err == nil {
		event.Props.SetURI(ical.PropURL, u)
	}
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
