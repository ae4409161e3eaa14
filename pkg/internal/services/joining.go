package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// CallIdentity is who a room access token is issued to.
type CallIdentity struct {
	Identity string          `json:"identity"`
	Name     string          `json:"name"`
	Guest    bool            `json:"guest"`
	Account  *models.Account `json:"account,omitempty"`
}

func NewCallIdentity(user *models.Account) CallIdentity {
	if user == nil {
		return CallIdentity{
			Identity: "guest-" + uuid.NewString(),
			Name:     "Guest",
			Guest:    true,
		}
	}
	return CallIdentity{
		Identity: user.ID,
		Name:     user.DisplayName(),
		Account:  user,
	}
}

func EncodeCallToken(who CallIdentity, meeting models.Meeting) (string, error) {
	isAdmin := who.Account != nil && who.Account.ID == meeting.CreatedByID

	grant := &auth.VideoGrant{
		Room:      meeting.ID,
		RoomJoin:  true,
		RoomAdmin: isAdmin,
	}

	duration := time.Second * time.Duration(viper.GetInt("calling.token_duration"))
	if duration <= 0 {
		duration = time.Hour
	}

	tk := auth.NewAccessToken(viper.GetString("calling.api_key"), viper.GetString("calling.api_secret"))
	tk.AddGrant(grant).
		SetIdentity(who.Identity).
		SetName(who.Name).
		SetMetadata(models.EncodeMetadata(who)).
		SetValidFor(duration)

	return tk.ToJWT()
}

// JoinMeeting opens the meeting room when needed and issues an access token.
// Access must already be checked with CheckMeetingAccess.
func JoinMeeting(
	ctx context.Context,
	calls CallProvider,
	rooms RoomService,
	meeting models.Meeting,
	who CallIdentity,
	now time.Time,
) (string, error) {
	status := ClassifyMeeting(meeting, now)
	if status.Ended {
		return "", ErrMeetingEnded
	} else if status.Upcoming {
		return "", ErrMeetingNotStarted
	}

	if err := rooms.EnsureRoom(ctx, meeting); err != nil {
		return "", fmt.Errorf("remote livekit error: %w", err)
	}
	if meeting.RoomOpenedAt == nil {
		if err := calls.MarkRoomOpened(ctx, meeting.ID, now); err != nil {
			log.Warn().Err(err).Str("meeting", meeting.ID).Msg("Unable to record room opening.")
		}
	}

	tk, err := EncodeCallToken(who, meeting)
	if err != nil {
		return "", err
	}

	Metrics.CallTokensIssuedTotal.WithLabelValues(strconv.FormatBool(who.Guest)).Inc()
	return tk, nil
}

// EndMeeting ends the meeting for everyone. Only the creator may do it.
func EndMeeting(
	ctx context.Context,
	calls CallProvider,
	rooms RoomService,
	meeting models.Meeting,
	user models.Account,
) (models.Meeting, error) {
	if meeting.CreatedByID != user.ID {
		return meeting, ErrNotMeetingCreator
	} else if meeting.EndedAt != nil {
		return meeting, ErrMeetingEnded
	}

	if err := rooms.DeleteRoom(ctx, meeting.ID); err != nil {
		log.Error().Err(err).Str("meeting", meeting.ID).Msg("Unable to delete room at livekit side")
	}

	return calls.EndCall(ctx, meeting.ID, time.Now())
}

func KickParticipant(
	ctx context.Context,
	rooms RoomService,
	meeting models.Meeting,
	user models.Account,
	identity string,
) error {
	if meeting.CreatedByID != user.ID {
		return ErrNotMeetingCreator
	}
	return rooms.RemoveParticipant(ctx, meeting.ID, identity)
}
