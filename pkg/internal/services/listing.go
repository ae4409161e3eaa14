package services

import (
	"context"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/samber/lo"
)

// MeetingStatus flags are computed independently of each other, a record
// carrying inconsistent timestamps may report both.
type MeetingStatus struct {
	Upcoming bool `json:"upcoming"`
	Ended    bool `json:"ended"`
}

type MeetingSummary struct {
	MeetingStatus

	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Description string     `json:"description,omitempty"`
}

func ClassifyMeeting(meeting models.Meeting, now time.Time) MeetingStatus {
	return MeetingStatus{
		Upcoming: meeting.StartsAt != nil && meeting.StartsAt.After(now),
		Ended:    meeting.EndedAt != nil,
	}
}

func SummarizeMeeting(meeting models.Meeting, now time.Time) MeetingSummary {
	return MeetingSummary{
		MeetingStatus: ClassifyMeeting(meeting, now),
		ID:            meeting.ID,
		Kind:          meeting.Kind().String(),
		StartsAt:      meeting.StartsAt,
		EndedAt:       meeting.EndedAt,
		Description:   meeting.Description(),
	}
}

// ListMeetings returns the scheduled meetings requesterId created or belongs to,
// latest start first.
func ListMeetings(ctx context.Context, calls CallProvider, requesterId string, now time.Time) ([]MeetingSummary, error) {
	meetings, err := calls.QueryCalls(ctx, CallFilter{
		Involving:       requesterId,
		RequireStartsAt: true,
	})
	if err != nil {
		return nil, err
	}

	return lo.Map(meetings, func(item models.Meeting, _ int) MeetingSummary {
		return SummarizeMeeting(item, now)
	}), nil
}
