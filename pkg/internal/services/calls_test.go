package services

import (
	"context"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCallIsIdempotent(t *testing.T) {
	ctx := context.Background()
	calls := NewDatabaseCallProvider(newTestDB(t))
	startsAt := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	first, err := calls.GetOrCreateCall(ctx, models.MeetingKindPrivate, "m1", CallData{
		StartsAt:    startsAt,
		Members:     BuildMembers("me", []string{"alice"}),
		Custom:      map[string]any{"description": "Sprint planning"},
		CreatedByID: "me",
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", first.ID)
	assert.Equal(t, models.MeetingKindPrivate, first.Kind())
	assert.True(t, startsAt.Equal(*first.StartsAt))
	assert.Len(t, first.Members, 2)

	second, err := calls.GetOrCreateCall(ctx, models.MeetingKindOpen, "m1", CallData{
		StartsAt:    startsAt.Add(time.Hour),
		Members:     BuildMembers("someone", nil),
		Custom:      map[string]any{"description": "Other"},
		CreatedByID: "someone",
	})
	require.NoError(t, err)
	assert.Equal(t, first.Type, second.Type)
	assert.Equal(t, "me", second.CreatedByID)
	assert.Equal(t, "Sprint planning", second.Description())
	assert.True(t, startsAt.Equal(*second.StartsAt))
	assert.ElementsMatch(t, []string{"alice", "me"}, lo.Map(second.Members, func(item models.MeetingMember, _ int) string {
		return item.UserID
	}))
}

func TestGetCallNotFound(t *testing.T) {
	calls := NewDatabaseCallProvider(newTestDB(t))

	_, err := calls.GetCall(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestQueryCallsInvolving(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	calls := NewDatabaseCallProvider(db)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	create := func(id, creator string, startsAt time.Time, members ...string) {
		_, err := calls.GetOrCreateCall(ctx, models.MeetingKindPrivate, id, CallData{
			StartsAt:    startsAt,
			Members:     BuildMembers(creator, members),
			CreatedByID: creator,
		})
		require.NoError(t, err)
	}

	create("created", "me", base)
	create("invited", "other", base.Add(2*time.Hour), "me")
	create("unrelated", "other", base.Add(time.Hour))
	require.NoError(t, db.Create(&models.Meeting{ID: "unscheduled", CreatedByID: "me"}).Error)

	meetings, err := calls.QueryCalls(ctx, CallFilter{Involving: "me", RequireStartsAt: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"invited", "created"}, lo.Map(meetings, func(item models.Meeting, _ int) string {
		return item.ID
	}))

	meetings, err = calls.QueryCalls(ctx, CallFilter{Involving: "me"})
	require.NoError(t, err)
	assert.Len(t, meetings, 3)

	meetings, err = calls.QueryCalls(ctx, CallFilter{Involving: "me", RequireStartsAt: true, Take: 1})
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, "invited", meetings[0].ID)
}

func TestEndCallAndRoomOpening(t *testing.T) {
	ctx := context.Background()
	calls := NewDatabaseCallProvider(newTestDB(t))
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	_, err := calls.GetOrCreateCall(ctx, models.MeetingKindOpen, "m1", CallData{
		StartsAt:    now,
		Members:     BuildMembers("me", nil),
		CreatedByID: "me",
	})
	require.NoError(t, err)

	open, err := calls.QueryCalls(ctx, CallFilter{OpenRoomsOnly: true})
	require.NoError(t, err)
	assert.Empty(t, open)

	require.NoError(t, calls.MarkRoomOpened(ctx, "m1", now))
	require.NoError(t, calls.MarkRoomOpened(ctx, "m1", now.Add(time.Hour)))

	open, err = calls.QueryCalls(ctx, CallFilter{OpenRoomsOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, now.Equal(*open[0].RoomOpenedAt))

	ended, err := calls.EndCall(ctx, "m1", now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, ended.EndedAt)

	again, err := calls.EndCall(ctx, "m1", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, ended.EndedAt.Equal(*again.EndedAt))

	open, err = calls.QueryCalls(ctx, CallFilter{OpenRoomsOnly: true})
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestCheckMeetingAccess(t *testing.T) {
	open := models.Meeting{ID: "open", Type: models.CallTypeDefault, CreatedByID: "owner"}
	private := models.Meeting{
		ID:          "private",
		Type:        models.CallTypePrivate,
		CreatedByID: "owner",
		Members: []models.MeetingMember{
			{MeetingID: "private", UserID: "owner", Role: models.MemberRoleCall},
			{MeetingID: "private", UserID: "member", Role: models.MemberRoleCall},
		},
	}

	tests := []struct {
		name    string
		meeting models.Meeting
		user    *models.Account
		guest   bool
		want    error
	}{
		{"visitor without guest flag", open, nil, false, ErrUnauthenticated},
		{"guest on open meeting", open, nil, true, nil},
		{"guest on private meeting", private, nil, true, ErrMeetingForbidden},
		{"anyone on open meeting", open, &models.Account{ID: "stranger"}, false, nil},
		{"owner on private meeting", private, &models.Account{ID: "owner"}, false, nil},
		{"member on private meeting", private, &models.Account{ID: "member"}, false, nil},
		{"stranger on private meeting", private, &models.Account{ID: "stranger"}, false, ErrMeetingForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMeetingAccess(tt.meeting, tt.user, tt.guest)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestQueryCallsHonoursCancellation(t *testing.T) {
	calls := NewDatabaseCallProvider(newTestDB(t))
	createMeeting(t, calls, "m1", models.MeetingKindOpen, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := calls.QueryCalls(ctx, CallFilter{Involving: "owner", RequireStartsAt: true})
	assert.ErrorIs(t, err, context.Canceled)
}
