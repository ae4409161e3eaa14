package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var C *gorm.DB

func NewSource() error {
	var err error

	var dialector gorm.Dialector
	switch driver := viper.GetString("database.driver"); driver {
	case "", "postgres":
		dialector = postgres.Open(viper.GetString("database.dsn"))
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("database.dsn"))
	default:
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	dialect := logger.New(&log.Logger, logger.Config{
		Colorful:                  true,
		IgnoreRecordNotFoundError: true,
		LogLevel:                  lo.Ternary(viper.GetBool("debug.database"), logger.Info, logger.Silent),
	})

	C, err = gorm.Open(dialector, &gorm.Config{NamingStrategy: schema.NamingStrategy{
		TablePrefix: viper.GetString("database.prefix"),
	}, Logger: dialect})

	return err
}
