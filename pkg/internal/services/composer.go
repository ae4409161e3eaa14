package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// MeetingDraft holds what the user entered before the meeting exists.
type MeetingDraft struct {
	// Description is at most 500 characters, checked before composing.
	Description string
	// StartTime is empty to start immediately. Values without an offset
	// are read in Location.
	StartTime         string
	Location          *time.Location
	ParticipantEmails []string
}

var localStartTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// SplitParticipantEmails splits the comma separated participant field.
func SplitParticipantEmails(raw string) []string {
	return NormalizeParticipantEmails(strings.Split(raw, ","))
}

// NormalizeParticipantEmails trims every entry and drops the empty ones.
func NormalizeParticipantEmails(emails []string) []string {
	return lo.Compact(lo.Map(emails, func(item string, _ int) string {
		return strings.TrimSpace(item)
	}))
}

// KindOfDraft is private as soon as one participant email survives trimming.
func KindOfDraft(draft MeetingDraft) models.MeetingKind {
	if len(NormalizeParticipantEmails(draft.ParticipantEmails)) > 0 {
		return models.MeetingKindPrivate
	}
	return models.MeetingKindOpen
}

// ResolveStartsAt turns the draft start time into an absolute UTC instant
// with millisecond precision. An empty value resolves to now.
func ResolveStartsAt(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 {
		return now.UTC().Truncate(time.Millisecond), nil
	}

	if val, err := time.Parse(time.RFC3339, raw); err == nil {
		return val.UTC().Truncate(time.Millisecond), nil
	}

	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localStartTimeLayouts {
		if val, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return val.UTC().Truncate(time.Millisecond), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, raw)
}

// FormatISO renders t the way call records expose timestamps.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ComposeMeeting creates a meeting from the draft on behalf of requesterId.
// The record returned by the call provider is authoritative. On failure
// nothing is kept and a retry starts over with a new id.
func ComposeMeeting(
	ctx context.Context,
	calls CallProvider,
	identities IdentityResolver,
	draft MeetingDraft,
	requesterId string,
) (models.Meeting, error) {
	meeting, err := composeMeeting(ctx, calls, identities, draft, requesterId)
	if err != nil {
		Metrics.ComposeFailuresTotal.Inc()
		return meeting, err
	}

	Metrics.MeetingsCreatedTotal.WithLabelValues(meeting.Kind().String()).Inc()
	log.Info().
		Str("meeting", meeting.ID).
		Str("kind", meeting.Kind().String()).
		Str("creator", requesterId).
		Int("members", len(meeting.Members)).
		Msg("A new meeting was created.")

	return meeting, nil
}

func composeMeeting(
	ctx context.Context,
	calls CallProvider,
	identities IdentityResolver,
	draft MeetingDraft,
	requesterId string,
) (models.Meeting, error) {
	id := uuid.NewString()

	emails := NormalizeParticipantEmails(draft.ParticipantEmails)
	kind := KindOfDraft(draft)

	members := BuildMembers(requesterId, nil)
	if kind == models.MeetingKindPrivate {
		ids, err := identities.ResolveUserIDs(ctx, emails)
		if err != nil {
			return models.Meeting{}, fmt.Errorf("unable to resolve participants: %w", err)
		} else if len(ids) == 0 {
			return models.Meeting{}, ErrParticipantsUnresolved
		}
		members = BuildMembers(requesterId, ids)
	}

	startsAt, err := ResolveStartsAt(draft.StartTime, draft.Location, time.Now())
	if err != nil {
		return models.Meeting{}, err
	}

	custom := map[string]any{}
	if len(draft.Description) > 0 {
		custom["description"] = draft.Description
	}

	return calls.GetOrCreateCall(ctx, kind, id, CallData{
		StartsAt:    startsAt,
		Members:     members,
		Custom:      custom,
		CreatedByID: requesterId,
	})
}
