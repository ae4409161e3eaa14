package main

import (
	"os"
	"os/signal"
	"syscall"

	pkg "git.solsynth.dev/hypernet/meeting/pkg/internal"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/cache"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/grpc"
	server "git.solsynth.dev/hypernet/meeting/pkg/internal/http"
	"git.solsynth.dev/hypernet/meeting/pkg/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

var configPath string

var rootCmd = &cobra.Command{
	Use:   "meeting",
	Short: "HyperNet meeting service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database auto migration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.NewSource(); err != nil {
			return err
		}
		if err := database.RunMigration(database.C); err != nil {
			return err
		}
		log.Info().Msg("Database migration completed.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings.toml")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings() error {
	// Configure settings
	if len(configPath) > 0 {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.SetConfigName("settings")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("MEETING")
	viper.AutomaticEnv()

	// Load settings
	return viper.ReadInConfig()
}

func serve() error {
	// Connect to database
	if err := database.NewSource(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewCache(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Connect other services
	services.SetupIdentities()
	services.SetupCalls()
	services.SetupLiveKit()

	// Server
	app := server.NewServer()
	go app.Listen()

	grpcServer := grpc.NewGrpc(database.C)
	go func() {
		if err := grpcServer.Listen(); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting grpc server...")
		}
	}()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.DoAutoDatabaseCleanup)
	quartz.AddFunc("@every 5m", services.DoAutoMeetingSettle)
	quartz.Start()

	// Messages
	log.Info().Msgf("Meeting v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Meeting v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
	grpcServer.Stop()
	if err := app.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("An error occurred when shutting down server...")
	}

	return nil
}
