package models

import (
	"time"

	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MeetingKind is the access classification of a meeting.
type MeetingKind int8

const (
	// MeetingKindOpen meetings can be joined by anyone holding the link,
	// guests included.
	MeetingKindOpen = MeetingKind(iota)
	// MeetingKindPrivate meetings admit their members only.
	MeetingKindPrivate
)

const (
	CallTypeDefault = "default"
	CallTypePrivate = "private-meeting"
)

// CallType is the call-type namespace the kind is created under.
func (v MeetingKind) CallType() string {
	if v == MeetingKindPrivate {
		return CallTypePrivate
	}
	return CallTypeDefault
}

func (v MeetingKind) String() string {
	if v == MeetingKindPrivate {
		return "private"
	}
	return "open"
}

func (v MeetingKind) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// KindOfCallType maps a stored call type back to its kind. Unknown types are open.
func KindOfCallType(callType string) MeetingKind {
	if callType == CallTypePrivate {
		return MeetingKindPrivate
	}
	return MeetingKindOpen
}

const MemberRoleCall = "call_member"

type Meeting struct {
	ID        string         `json:"id" gorm:"primaryKey;size:64"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Type         string            `json:"type" gorm:"size:32"`
	StartsAt     *time.Time        `json:"starts_at" gorm:"index"`
	EndedAt      *time.Time        `json:"ended_at"`
	RoomOpenedAt *time.Time        `json:"room_opened_at"`
	CreatedByID  string            `json:"created_by_id" gorm:"index;size:128"`
	Custom       datatypes.JSONMap `json:"custom"`
	Members      []MeetingMember   `json:"members" gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE"`
}

func (v Meeting) Kind() MeetingKind {
	return KindOfCallType(v.Type)
}

func (v Meeting) Description() string {
	if v.Custom == nil {
		return ""
	}
	desc, _ := v.Custom["description"].(string)
	return desc
}

func (v Meeting) HasMember(userId string) bool {
	return lo.ContainsBy(v.Members, func(item MeetingMember) bool {
		return item.UserID == userId
	})
}

type MeetingMember struct {
	MeetingID string    `json:"meeting_id" gorm:"primaryKey;size:64"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:128;index"`
	Role      string    `json:"role" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}
