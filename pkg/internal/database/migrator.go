package database

import (
	"git.solsynth.dev/hypernet/meeting/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Account{},
	&models.Meeting{},
	&models.MeetingMember{},
}

// SoftDeleteRange lists the models whose soft-deleted rows get purged.
var SoftDeleteRange = []any{
	&models.Meeting{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
