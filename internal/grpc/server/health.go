// Package server реализует gRPC-сервер проверки здоровья фоновых воркеров.
//
// HealthServer отдает статус по протоколу grpc.health.v1 и периодически
// обновляет его по результату проверки готовности базы данных.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/meal-subscription/internal/lib/sl"
)

const probeTimeout = 2 * time.Second

// Check проверяет одну зависимость воркера.
type Check func(ctx context.Context) error

// HealthServer — gRPC-сервер со стандартным сервисом Health.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	checks     []Check
	service    string
	log        *slog.Logger
}

// NewHealthServer открывает listener на address и регистрирует сервис Health.
// Статус service выставляется в NOT_SERVING до первой успешной проверки.
// Сервис считается здоровым, только если проходят все checks.
func NewHealthServer(address, service string, log *slog.Logger, checks ...Check) (*HealthServer, error) {
	const op = "grpc.server.NewHealthServer"

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hs := health.NewServer()
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     hs,
		listener:   lis,
		checks:     checks,
		service:    service,
		log:        log.With(slog.String("op", op), slog.String("service", service)),
	}, nil
}

// Addr возвращает адрес, на котором слушает сервер.
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Probe проверяет зависимости и обновляет статус сервиса.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			s.log.Warn("health probe failed", sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	s.health.SetServingStatus(s.service, status)
	return status
}

// Run обслуживает запросы и раз в interval перепроверяет зависимости,
// пока не отменен ctx. Ошибка Serve возвращается сразу.
func (s *HealthServer) Run(ctx context.Context, interval time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gRPC health server listening on", slog.String("address", s.Addr()))
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	s.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			s.grpcServer.GracefulStop()
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}
