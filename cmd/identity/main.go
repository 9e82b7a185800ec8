// Package main реализует точку входа командной стороны сервиса идентичности.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	httpServer "useridentity/internal/identity/adapters/http"
	"useridentity/internal/identity/adapters/memory"
	"useridentity/internal/identity/adapters/postgres"
	redisadapter "useridentity/internal/identity/adapters/redis"
	"useridentity/internal/identity/adapters/services"
	"useridentity/internal/identity/app"
	"useridentity/internal/identity/config"
	"useridentity/internal/identity/db"
	"useridentity/internal/identity/ports/repositories"
	"useridentity/pkg/db/redis"
	"useridentity/pkg/logger"
	"useridentity/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "IDENTITY_LOGGER_MODE"
	EnvLoggerLevel = "IDENTITY_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrCreateRedisClient    = "failed to create Redis client"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "identity service started"
	LogServiceShutdownDone = "identity service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing Redis connection"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitRepo            = "initializing repositories"
	LogInitPublishers      = "initializing event publishers"
	LogInitServices        = "initializing services"
	LogInitCommandHandler  = "initializing command handler"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

// repositoryFactory - общий вид фабрик хранилищ postgres и memory.
type repositoryFactory interface {
	EventStore() repositories.EventStore
	LookupStore() repositories.LookupStore
	UserViewWriter() repositories.UserViewWriter
}

// serve запускает listen в отдельной горутине. Ошибка запуска отменяет ожидание
// сигнала через stop, результат listen передается в канал.
func serve(listen func() error, stop context.CancelFunc) <-chan error {
	result := make(chan error, 1)
	go func() {
		err := listen()
		if err != nil {
			stop()
		}
		result <- err
	}()
	return result
}

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		var hooks []func(context.Context) error

		log.Info(ctx, LogInitRepo)
		var repos repositoryFactory
		switch cfg.Storage.Driver {
		case config.StorageDriverMemory:
			repos = memory.NewRepositoryFactory()
		default:
			database, err := db.New(ctx, &cfg.Postgres)
			if err != nil {
				log.Error(ctx, ErrInitDB, zap.Error(err))
				exitCode = 1
				return
			}
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			})
			repos = postgres.NewRepositoryFactory(database.Pool())
		}

		log.Info(ctx, LogInitPublishers)
		publishers := app.Publishers{app.NewUserProjector(repos.UserViewWriter())}
		if cfg.Redis.Enabled {
			client, err := redis.NewClient(ctx, cfg.Redis.ClientConfig())
			if err != nil {
				log.Error(ctx, ErrCreateRedisClient, zap.Error(err))
				exitCode = 1
				shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
				return
			}
			hooks = append(hooks, func(ctx context.Context) error {
				log.Info(ctx, LogClosingRedis)
				return client.Close()
			})
			publishers = append(publishers, redisadapter.NewEventPublisher(client.RawClient(), cfg.Redis.EventsChannel))
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(cfg.Security.BcryptCost)

		log.Info(ctx, LogInitCommandHandler)
		commands := app.NewCommandHandler(
			app.NewUserRepository(repos.EventStore()),
			repos.LookupStore(),
			serviceFactory.PasswordService(),
			publishers,
			app.WithAuditAuthentication(cfg.Security.AuditAuthentication),
		)

		log.Info(ctx, LogInitHTTPServer)
		server := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		})

		httpServer.SetupRouter(server, commands)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		serveCtx, stop := context.WithCancel(ctx)
		defer stop()

		listenErr := serve(func() error {
			return server.Listen(cfg.HTTP.GetAddress())
		}, stop)

		// HTTP сервер останавливается первым, затем закрываются хранилища.
		shutdown.Wait(serveCtx, cfg.Shutdown.GetTimeout(), func(ctx context.Context) error {
			log.Info(ctx, LogStoppingHTTP)
			if err := server.ShutdownWithContext(ctx); err != nil {
				return fmt.Errorf("stopping HTTP server: %w", err)
			}
			shutdown.Run(ctx, cfg.Shutdown.GetTimeout(), hooks...)
			return nil
		})

		select {
		case err := <-listenErr:
			if err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
				exitCode = 1
			}
		case <-time.After(cfg.Shutdown.GetTimeout()):
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
