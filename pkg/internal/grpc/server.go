package grpc

import (
	"context"
	"net"

	"git.solsynth.dev/hypernet/meeting/pkg/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	health "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

type Server struct {
	health.UnimplementedHealthServer

	db  *gorm.DB
	srv *grpc.Server
}

func NewGrpc(db *gorm.DB) *Server {
	server := &Server{
		db:  db,
		srv: grpc.NewServer(),
	}

	health.RegisterHealthServer(server.srv, server)

	reflection.Register(server.srv)

	return server
}

// Check reports serving as long as the database answers.
func (v *Server) Check(ctx context.Context, in *health.HealthCheckRequest) (*health.HealthCheckResponse, error) {
	if svc := in.GetService(); len(svc) > 0 && svc != health.Health_ServiceDesc.ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	db := v.db
	if db == nil {
		db = database.C
	}
	if db == nil {
		return &health.HealthCheckResponse{Status: health.HealthCheckResponse_NOT_SERVING}, nil
	}

	sqlDb, err := db.DB()
	if err == nil {
		err = sqlDb.PingContext(ctx)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Health check failed, database is unreachable.")
		return &health.HealthCheckResponse{Status: health.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &health.HealthCheckResponse{Status: health.HealthCheckResponse_SERVING}, nil
}

func (v *Server) Listen() error {
	listener, err := net.Listen("tcp", viper.GetString("grpc_bind"))
	if err != nil {
		return err
	}

	return v.srv.Serve(listener)
}

func (v *Server) Stop() {
	v.srv.GracefulStop()
}
