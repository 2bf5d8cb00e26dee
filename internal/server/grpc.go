package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/oggyb/blinder/internal/config"
	svcErr "github.com/oggyb/blinder/internal/errors"
)

// NewGRPCServer builds a gRPC server and registers all provided services.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(log)),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return grpcServer
}

// ServeGRPC listens on the configured address and serves until ctx is done.
func ServeGRPC(ctx context.Context, cfg *config.Config, srv *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	if err := srv.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// UnaryLoggingInterceptor logs each call and guarantees that every returned
// error is a status error with a client-safe message.
func UnaryLoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			mapped := svcErr.Map(err)
			log.Warn("grpc call failed",
				"method", info.FullMethod,
				"code", status.Code(mapped).String(),
				"err", err,
				slog.Duration("elapsed", time.Since(start)),
			)
			return nil, mapped
		}
		log.Debug("grpc call", "method", info.FullMethod, slog.Duration("elapsed", time.Since(start)))
		return resp, nil
	}
}
