package services

import (
	"context"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type Recording struct {
	Filename  string     `json:"filename"`
	URL       string     `json:"url"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// RoomService is the media side of a meeting. Rooms are named after the meeting id.
type RoomService interface {
	EnsureRoom(ctx context.Context, meeting models.Meeting) error
	DeleteRoom(ctx context.Context, name string) error
	ListParticipants(ctx context.Context, name string) ([]*livekit.ParticipantInfo, error)
	RemoveParticipant(ctx context.Context, name, identity string) error
	ListRoomNames(ctx context.Context) ([]string, error)
	ListRecordings(ctx context.Context, name string) ([]Recording, error)
}

var Rooms RoomService

type LiveKitRooms struct {
	rooms  *lksdk.RoomServiceClient
	egress *lksdk.EgressClient

	emptyTimeout    uint32
	maxParticipants uint32
}

func SetupLiveKit() {
	host := "https://" + viper.GetString("calling.endpoint")

	Rooms = &LiveKitRooms{
		rooms: lksdk.NewRoomServiceClient(
			host,
			viper.GetString("calling.api_key"),
			viper.GetString("calling.api_secret"),
		),
		egress: lksdk.NewEgressClient(
			host,
			viper.GetString("calling.api_key"),
			viper.GetString("calling.api_secret"),
		),
		emptyTimeout:    viper.GetUint32("calling.empty_timeout_duration"),
		maxParticipants: viper.GetUint32("calling.max_participants"),
	}
}

func (v *LiveKitRooms) EnsureRoom(ctx context.Context, meeting models.Meeting) error {
	// CreateRoom hands back the existing room when the name is taken.
	_, err := v.rooms.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            meeting.ID,
		EmptyTimeout:    v.emptyTimeout,
		MaxParticipants: v.maxParticipants,
		Metadata: models.EncodeMetadata(map[string]any{
			"id":          meeting.ID,
			"type":        meeting.Type,
			"description": meeting.Description(),
			"starts_at":   meeting.StartsAt,
		}),
	})
	return err
}

func (v *LiveKitRooms) DeleteRoom(ctx context.Context, name string) error {
	_, err := v.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: name,
	})
	return err
}

func (v *LiveKitRooms) ListParticipants(ctx context.Context, name string) ([]*livekit.ParticipantInfo, error) {
	res, err := v.rooms.ListParticipants(ctx, &livekit.ListParticipantsRequest{
		Room: name,
	})
	if err != nil {
		return nil, err
	}
	return res.Participants, nil
}

func (v *LiveKitRooms) RemoveParticipant(ctx context.Context, name, identity string) error {
	_, err := v.rooms.RemoveParticipant(ctx, &livekit.RoomParticipantIdentity{
		Room:     name,
		Identity: identity,
	})
	return err
}

func (v *LiveKitRooms) ListRoomNames(ctx context.Context) ([]string, error) {
	res, err := v.rooms.ListRooms(ctx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, err
	}
	return lo.Map(res.GetRooms(), func(item *livekit.Room, _ int) string {
		return item.GetName()
	}), nil
}

func (v *LiveKitRooms) ListRecordings(ctx context.Context, name string) ([]Recording, error) {
	res, err := v.egress.ListEgress(ctx, &livekit.ListEgressRequest{
		RoomName: name,
	})
	if err != nil {
		return nil, err
	}

	var out []Recording
	for _, item := range res.GetItems() {
		for _, file := range item.GetFileResults() {
			out = append(out, Recording{
				Filename:  file.GetFilename(),
				URL:       file.GetLocation(),
				StartedAt: unixNanoPtr(file.GetStartedAt()),
				EndedAt:   unixNanoPtr(file.GetEndedAt()),
			})
		}
	}

	return out, nil
}

func unixNanoPtr(ns int64) *time.Time {
	if ns <= 0 {
		return nil
	}
	return lo.ToPtr(time.Unix(0, ns))
}
