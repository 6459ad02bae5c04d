// Command fortune-server starts the access decision gRPC server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/config"
	"github.com/and161185/fortune-gate/internal/limiter"
	"github.com/and161185/fortune-gate/internal/metrics"
	"github.com/and161185/fortune-gate/internal/migrate"
	"github.com/and161185/fortune-gate/internal/repository/postgres"
	grpcserver "github.com/and161185/fortune-gate/internal/server/grpc"
	"github.com/and161185/fortune-gate/internal/server/grpc/gatev1"
	"github.com/and161185/fortune-gate/internal/service"
	"github.com/and161185/fortune-gate/internal/sweeper"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and serves gRPC and metrics
// until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clock := calendar.NewSystemClock(loc)

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if v, err := migrate.Version(ctx, cfg.DSN); err == nil {
		logger.Info("schema ready", zap.Int64("version", v))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	m := metrics.New()

	// Services
	enrollment := service.NewEnrollmentRegistry(postgres.NewEnrollmentRepo(db), logger, m)
	quota := service.NewQuotaTracker(postgres.NewUsageRepo(db), clock, logger, m)
	cooldowns := service.NewCooldownRegistry(postgres.NewCooldownRepo(db), clock, cfg.Cooldown, logger, m)
	access := service.NewAccessService(
		service.NewStatusGate(postgres.NewIdentityRepo(db)),
		enrollment, quota, cooldowns, clock, logger, m,
	)

	// gRPC server with interceptors
	interceptors := []grpc.UnaryServerInterceptor{
		grpcserver.RecoverUnary(logger),
		grpcserver.LoggingUnary(logger),
	}
	var peers *limiter.PeerLimiter
	if cfg.RateRPS > 0 {
		peers = limiter.New(cfg.RateRPS, cfg.RateBurst, 10*time.Minute)
		interceptors = append(interceptors, grpcserver.RateLimitUnary(peers, m))
	}
	interceptors = append(interceptors, grpcserver.AuthUnary(grpcserver.NewVerifier([]byte(cfg.JWTKey)), logger))

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if !cfg.Insecure {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return fmt.Errorf("load TLS cert/key: %w", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}
	s := grpc.NewServer(opts...)
	gatev1.RegisterAccessGateServer(s, grpcserver.New(access, enrollment, logger))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	sw := sweeper.New(sweeper.Options{
		Spec:      cfg.SweepSpec,
		Retention: cfg.UsageRetention,
		Cooldowns: cooldowns,
		Usage:     quota,
		Peers:     sweepPeers(peers),
		Clock:     clock,
		Log:       logger,
		Metrics:   m,
	})
	if err := sw.Start(ctx); err != nil {
		return err
	}
	defer sw.Stop()

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Bool("tls", !cfg.Insecure))
		return s.Serve(lis)
	})

	var msrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		msrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			if err := msrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		hs.Shutdown()
		if msrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = msrv.Shutdown(sctx)
		}

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
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// sweepPeers avoids handing the sweeper a typed-nil limiter.
func sweepPeers(p *limiter.PeerLimiter) sweeper.PeerSweeper {
	if p == nil {
		return nil
	}
	return p
}
