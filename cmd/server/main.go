// Command tracker-server starts the tracker gRPC server.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/openstudio/internal/api"
	"github.com/and161185/openstudio/internal/config"
	pkgcrypto "github.com/and161185/openstudio/internal/crypto"
	"github.com/and161185/openstudio/internal/limiter"
	"github.com/and161185/openstudio/internal/repository/memory"
	grpcserver "github.com/and161185/openstudio/internal/server/grpc"
	"github.com/and161185/openstudio/internal/service"
	"github.com/and161185/openstudio/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, wires in-memory stores into services and serves gRPC.
func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := memory.NewUserRepo()
	projectRepo := memory.NewProjectRepo()
	issueRepo := memory.NewIssueRepo()
	memberRepo := memory.NewMemberRepo()

	// Services
	tokens, err := token.New([]byte(cfg.JWTSecret),
		token.WithAccessTTL(cfg.AccessTTL),
		token.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}
	creds, err := service.NewCredentialStore(userRepo, pkgcrypto.NewHasher(pkgcrypto.DefaultParams))
	if err != nil {
		logger.Fatal("credential store", zap.Error(err))
	}
	loginLim := limiter.NewMemory(cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlock)
	authSvc := service.NewAuthService(creds, tokens, loginLim, logger)

	svc := grpcserver.Services{
		Auth:     authSvc,
		Users:    service.NewUserService(userRepo),
		Projects: service.NewProjectService(projectRepo, logger),
		Issues:   service.NewIssueService(issueRepo),
		Members:  service.NewMemberService(memberRepo),
	}

	peerLim := grpcserver.NewPeerLimiter(cfg.RPS, cfg.Burst)
	go peerLim.Run(ctx, time.Minute, 10*time.Minute)
	go loginLim.Run(ctx, time.Minute)

	// gRPC server with interceptors
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpcserver.Chain(logger, peerLim, authSvc)...),
	}
	if cfg.TLS() {
		tc, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			logger.Fatal("failed to load TLS cert/key", zap.Error(err))
		}
		opts = append(opts, grpc.Creds(tc))
	} else {
		logger.Warn("TLS disabled, serving plaintext")
	}
	s := grpc.NewServer(opts...)

	// App service
	api.RegisterTrackerServer(s, grpcserver.New(svc, logger))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	if cfg.Dev {
		reflection.Register(s)
	}

	// Metrics
	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
	}

	// Listen
	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Fatal("listen", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", cfg.TLS()))
		errCh <- s.Serve(lis)
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		hs.Shutdown()
		// graceful shutdown
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			s.Stop()
		}
		if metricsSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = metricsSrv.Shutdown(sctx)
			cancel()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
