package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/livekit/protocol/livekit"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)

	sqlDb, err := db.DB()
	require.NoError(t, err)
	sqlDb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDb.Close() })

	require.NoError(t, database.RunMigration(db))

	return db
}

var errRemote = errors.New("remote unavailable")

type fakeIdentities struct {
	ids   map[string]string
	err   error
	calls int
}

func (v *fakeIdentities) ResolveUserIDs(_ context.Context, emails []string) ([]string, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	var out []string
	for _, email := range emails {
		if id, ok := v.ids[NormalizeEmail(email)]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type createRequest struct {
	Kind models.MeetingKind
	ID   string
	Data CallData
}

// recordingCalls captures create requests and otherwise behaves like an empty store.
type recordingCalls struct {
	requests []createRequest
	err      error
}

func (v *recordingCalls) GetOrCreateCall(_ context.Context, kind models.MeetingKind, id string, data CallData) (models.Meeting, error) {
	v.requests = append(v.requests, createRequest{kind, id, data})
	if v.err != nil {
		return models.Meeting{}, v.err
	}

	startsAt := data.StartsAt
	meeting := models.Meeting{
		ID:          id,
		Type:        kind.CallType(),
		StartsAt:    &startsAt,
		CreatedByID: data.CreatedByID,
		Custom:      data.Custom,
	}
	for _, member := range data.Members {
		meeting.Members = append(meeting.Members, models.MeetingMember{
			MeetingID: id,
			UserID:    member.UserID,
			Role:      member.Role,
		})
	}
	return meeting, nil
}

func (v *recordingCalls) GetCall(context.Context, string) (models.Meeting, error) {
	return models.Meeting{}, ErrMeetingNotFound
}

func (v *recordingCalls) QueryCalls(context.Context, CallFilter) ([]models.Meeting, error) {
	return nil, v.err
}

func (v *recordingCalls) EndCall(context.Context, string, time.Time) (models.Meeting, error) {
	return models.Meeting{}, v.err
}

func (v *recordingCalls) MarkRoomOpened(context.Context, string, time.Time) error {
	return v.err
}

type fakeRooms struct {
	mu sync.Mutex

	rooms   map[string]bool
	removed []string
	err     error
}

func newFakeRooms(names ...string) *fakeRooms {
	rooms := make(map[string]bool, len(names))
	for _, name := range names {
		rooms[name] = true
	}
	return &fakeRooms{rooms: rooms}
}

func (v *fakeRooms) EnsureRoom(_ context.Context, meeting models.Meeting) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return v.err
	}
	v.rooms[meeting.ID] = true
	return nil
}

func (v *fakeRooms) DeleteRoom(_ context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return v.err
	}
	delete(v.rooms, name)
	return nil
}

func (v *fakeRooms) ListParticipants(context.Context, string) ([]*livekit.ParticipantInfo, error) {
	return nil, v.err
}

func (v *fakeRooms) RemoveParticipant(_ context.Context, name, identity string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return v.err
	}
	v.removed = append(v.removed, name+"/"+identity)
	return nil
}

func (v *fakeRooms) ListRoomNames(context.Context) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	var out []string
	for name := range v.rooms {
		out = append(out, name)
	}
	return out, nil
}

func (v *fakeRooms) ListRecordings(context.Context, string) ([]Recording, error) {
	return nil, v.err
}
