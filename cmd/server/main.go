package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game-lab/auth"
	"game-lab/contract"
	"game-lab/domain/poker"
	gameerrors "game-lab/errors"
	"game-lab/infrastructure/api"
	grpchealth "game-lab/infrastructure/grpc"
	"game-lab/infrastructure/ws"
	"game-lab/internal"
	"game-lab/observability"
	"game-lab/repositories"
	"game-lab/runtime"
	"game-lab/runtime/workers"
	"game-lab/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until a signal arrives, then shuts down in
// reverse order so deferred cleanups (database close) always run.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, "game-lab", config.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("tracing setup failed: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// 3. Event log
	eventLog, db, closeLog, err := openEventLog(config, log)
	if err != nil {
		return err
	}
	defer closeLog()

	// 4. Engine, supervision & broadcast
	monitoring := observability.NewMonitoringManager(log)
	supervisor := workers.NewSupervisor(log).WithRestartInterval(config.RestartInterval)
	registry := runtime.NewRegistry(log)
	engine := runtime.NewEngine[*poker.State](ctx, log, poker.New(), eventLog, registry, supervisor, monitoring,
		runtime.EngineConfig{MailboxSize: config.MailboxSize})
	orchestrator := runtime.NewOrchestrator(log, supervisor, engine, monitoring, config.TickInterval, config.HeartbeatInterval)

	// 5. Transport
	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(issuer)
	roomService := services.NewRoomService(log, engine, registry)
	socket := ws.NewHandler(log, authService, roomService, monitoring, ws.HandlerConfig{
		PingInterval: config.PingInterval,
		WriteTimeout: config.WriteTimeout,
		BufferSize:   config.ConnectionBufferSize,
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           api.NewServer(log, authService, roomService, socket.Handle, monitoring).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	health := grpchealth.NewHealthServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orchestrator.Start(gctx)
	})
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		address := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", address, err)
		}
		health.Serving()
		log.Info("Starting gRPC health server", "address", address)
		if err := health.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})
	if config.DebugPort > 0 {
		debug := internal.NewDebugServer(db, config.DebugPort, internal.LogRowMapper, func() any {
			return monitoring.GetLatest()
		}, engine.Evict)
		g.Go(func() error {
			log.Info("Starting debug server", "address", debug.Addr)
			if err := debug.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return debug.Close()
		})
	}

	// 6. Wait for Stop or Error
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		engine.Close()
		orchestrator.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}

// openEventLog returns the configured backend. db is set only for badger, the
// debug inspector reads it directly.
func openEventLog(config internal.Config, log *slog.Logger) (contract.EventLog, *badger.DB, func(), error) {
	switch config.LogBackend {
	case internal.BackendBadger:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return repositories.NewBadgerLog(db, log), db, func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	case internal.BackendSQLite:
		sqliteLog, err := repositories.OpenSQLiteLog(config.SqliteFilepath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return sqliteLog, nil, func() {
			log.Info("Closing SQLite...")
			_ = sqliteLog.Close()
		}, nil
	case internal.BackendMemory:
		log.Warn("Rooms are kept in memory only and will not survive a restart")
		return repositories.NewMemoryLog(), nil, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %s", gameerrors.ErrUnknownLogBackend, config.LogBackend)
	}
}
