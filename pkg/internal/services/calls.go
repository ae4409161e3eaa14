package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CallData is the payload of a create-or-fetch request.
type CallData struct {
	StartsAt    time.Time
	Members     []Membership
	Custom      map[string]any
	CreatedByID string
}

type CallFilter struct {
	// Involving keeps meetings created by, or including, this user.
	Involving       string
	RequireStartsAt bool
	// OpenRoomsOnly keeps meetings whose room was opened and that are not ended yet.
	OpenRoomsOnly bool
	Take          int
	Offset        int
}

// CallProvider is the store of call records. Records are created once
// and afterwards only re-read; the provider's copy is authoritative.
type CallProvider interface {
	// GetOrCreateCall is idempotent on id: a second call returns the existing record.
	GetOrCreateCall(ctx context.Context, kind models.MeetingKind, id string, data CallData) (models.Meeting, error)
	GetCall(ctx context.Context, id string) (models.Meeting, error)
	// QueryCalls returns matches sorted by starts_at, latest first.
	QueryCalls(ctx context.Context, filter CallFilter) ([]models.Meeting, error)
	EndCall(ctx context.Context, id string, at time.Time) (models.Meeting, error)
	MarkRoomOpened(ctx context.Context, id string, at time.Time) error
}

var Calls CallProvider

func SetupCalls() {
	Calls = NewDatabaseCallProvider(database.C)
}

type DatabaseCallProvider struct {
	db *gorm.DB
}

func NewDatabaseCallProvider(db *gorm.DB) *DatabaseCallProvider {
	return &DatabaseCallProvider{db: db}
}

func (v *DatabaseCallProvider) GetOrCreateCall(ctx context.Context, kind models.MeetingKind, id string, data CallData) (models.Meeting, error) {
	startsAt := data.StartsAt
	meeting := models.Meeting{
		ID:          id,
		Type:        kind.CallType(),
		StartsAt:    &startsAt,
		CreatedByID: data.CreatedByID,
		Custom:      datatypes.JSONMap(data.Custom),
	}

	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&meeting)
		if res.Error != nil {
			return res.Error
		} else if res.RowsAffected == 0 || len(data.Members) == 0 {
			return nil
		}

		members := lo.Map(data.Members, func(item Membership, _ int) models.MeetingMember {
			return models.MeetingMember{
				MeetingID: id,
				UserID:    item.UserID,
				Role:      item.Role,
			}
		})
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error
	})
	if err != nil {
		return meeting, fmt.Errorf("unable to create call: %w", err)
	}

	return v.GetCall(ctx, id)
}

func (v *DatabaseCallProvider) GetCall(ctx context.Context, id string) (models.Meeting, error) {
	var meeting models.Meeting
	if err := v.db.WithContext(ctx).
		Where("id = ?", id).
		Preload("Members").
		First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return meeting, ErrMeetingNotFound
		}
		return meeting, err
	}

	return meeting, nil
}

func (v *DatabaseCallProvider) QueryCalls(ctx context.Context, filter CallFilter) ([]models.Meeting, error) {
	db := v.db.WithContext(ctx)
	tx := db.Preload("Members")
	if filter.RequireStartsAt {
		tx = tx.Where("starts_at IS NOT NULL")
	}
	if filter.OpenRoomsOnly {
		tx = tx.Where("room_opened_at IS NOT NULL AND ended_at IS NULL")
	}
	if len(filter.Involving) > 0 {
		memberOf := db.Model(&models.MeetingMember{}).
			Select("meeting_id").
			Where("user_id = ?", filter.Involving)
		tx = tx.Where("(created_by_id = ? OR id IN (?))", filter.Involving, memberOf)
	}
	if filter.Take > 0 {
		tx = tx.Limit(filter.Take)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}

	var meetings []models.Meeting
	if err := tx.Order("starts_at DESC").Find(&meetings).Error; err != nil {
		return meetings, err
	}

	return meetings, nil
}

func (v *DatabaseCallProvider) EndCall(ctx context.Context, id string, at time.Time) (models.Meeting, error) {
	if err := v.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", at).Error; err != nil {
		return models.Meeting{}, err
	}

	return v.GetCall(ctx, id)
}

func (v *DatabaseCallProvider) MarkRoomOpened(ctx context.Context, id string, at time.Time) error {
	return v.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ? AND room_opened_at IS NULL", id).
		Update("room_opened_at", at).Error
}

// CheckMeetingAccess decides whether user may see and join the meeting.
// A nil user is a visitor; with guest set they may join open meetings only.
func CheckMeetingAccess(meeting models.Meeting, user *models.Account, guest bool) error {
	if user == nil {
		if !guest {
			return ErrUnauthenticated
		} else if meeting.Kind() == models.MeetingKindPrivate {
			return ErrMeetingForbidden
		}
		return nil
	}

	if meeting.Kind() == models.MeetingKindPrivate &&
		meeting.CreatedByID != user.ID &&
		!meeting.HasMember(user.ID) {
		return ErrMeetingForbidden
	}

	return nil
}
