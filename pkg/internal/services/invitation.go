package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// InvitationTimeLayout is the long date with short time used in invitations.
const InvitationTimeLayout = "Monday, 2 January 2006 at 3:04 pm"

type Invitation struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	MailtoURL string `json:"mailto_url"`
}

// MeetingLink is the shareable address of a meeting on the frontend.
func MeetingLink(baseUrl, id string, guest bool) string {
	link := fmt.Sprintf("%s/meeting/%s", strings.TrimRight(baseUrl, "/"), url.PathEscape(id))
	if guest {
		link += "?guest=true"
	}
	return link
}

// FormatInvitation builds the mail invitation for a meeting. The start time is
// rendered in its own location.
func FormatInvitation(link string, startsAt *time.Time, description string) Invitation {
	subject := "Join my meeting"
	paragraphs := []string{fmt.Sprintf("join my meeting at %s.", link)}

	if startsAt != nil {
		formatted := startsAt.Format(InvitationTimeLayout)
		subject += " at " + formatted
		paragraphs = append(paragraphs, fmt.Sprintf("The meeting starts at %s.", formatted))
	}
	if len(description) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf("Description: %s", description))
	}

	body := strings.Join(paragraphs, "\n\n")

	return Invitation{
		Subject:   subject,
		Body:      body,
		MailtoURL: fmt.Sprintf("mailto:?subject=%s&body=%s", encodeComponent(subject), encodeComponent(body)),
	}
}

// encodeComponent percent-encodes everything outside the unreserved set,
// spaces become %20 rather than '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
