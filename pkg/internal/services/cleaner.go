package services

import (
	"context"
	"time"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func DoAutoDatabaseCleanup() {
	deadline := time.Now().Add(-60 * time.Minute)
	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var count int64

	// Retire meetings ended longer than the retention period ago
	if days := viper.GetInt("meeting.retention_days"); days > 0 {
		expiry := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
		tx := database.C.Where("ended_at < ?", expiry).Delete(&models.Meeting{})
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when retiring ended meetings...")
		}
		count += tx.RowsAffected
	}

	// Deal soft-deletion
	for _, model := range database.SoftDeleteRange {
		tx := database.C.Unscoped().Delete(model, "deleted_at <= ?", deadline)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
		}
		count += tx.RowsAffected
	}

	// Members of purged meetings go with them
	tx := database.C.
		Where("meeting_id NOT IN (?)", database.C.Unscoped().Model(&models.Meeting{}).Select("id")).
		Delete(&models.MeetingMember{})
	if tx.Error != nil {
		log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
	}
	count += tx.RowsAffected

	log.Debug().Int64("affected", count).Msg("Clean up entire database accomplished.")
}

func DoAutoMeetingSettle() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if count, err := SettleMeetings(ctx, Calls, Rooms, time.Now()); err != nil {
		log.Error().Err(err).Msg("An error occurred when settling meetings...")
	} else if count > 0 {
		log.Info().Int("settled", count).Msg("Marked meetings with closed rooms as ended.")
	}
}

// SettleMeetings marks every opened, not yet ended meeting whose room no longer
// exists as ended at now.
func SettleMeetings(ctx context.Context, calls CallProvider, rooms RoomService, now time.Time) (int, error) {
	meetings, err := calls.QueryCalls(ctx, CallFilter{OpenRoomsOnly: true})
	if err != nil {
		return 0, err
	} else if len(meetings) == 0 {
		return 0, nil
	}

	names, err := rooms.ListRoomNames(ctx)
	if err != nil {
		return 0, err
	}
	alive := lo.SliceToMap(names, func(item string) (string, struct{}) {
		return item, struct{}{}
	})

	var count int
	for _, meeting := range meetings {
		if _, ok := alive[meeting.ID]; ok {
			continue
		}
		if _, err := calls.EndCall(ctx, meeting.ID, now); err != nil {
			log.Warn().Err(err).Str("meeting", meeting.ID).Msg("Unable to settle meeting.")
			continue
		}
		count++
	}

	Metrics.MeetingsSettledTotal.Add(float64(count))
	return count, nil
}
