package services

import (
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/samber/lo"
)

type Membership struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// BuildMembers turns the resolved participants and the requester into a member list.
// Participants come first and the requester is appended; the first occurrence
// of every user id is kept.
func BuildMembers(requesterId string, resolved []string) []Membership {
	members := lo.Map(resolved, func(item string, _ int) Membership {
		return Membership{UserID: item, Role: models.MemberRoleCall}
	})
	members = append(members, Membership{UserID: requesterId, Role: models.MemberRoleCall})

	return lo.UniqBy(members, func(item Membership) string {
		return item.UserID
	})
}
