package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/database"
	"github.com/yukikurage/task-tracker-api/internal/events"
	"github.com/yukikurage/task-tracker-api/internal/logger"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/router"
	"github.com/yukikurage/task-tracker-api/internal/services"
	"github.com/yukikurage/task-tracker-api/internal/session"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		FilePath:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	if err := run(cfg); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	publisher, nc, err := events.Connect(cfg.NATSURL)
	if err != nil {
		return err
	}
	if nc != nil {
		defer nc.Drain()
		logger.Info("NATS connected", "url", cfg.NATSURL)
	}

	store, closeStore, err := newSessionStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	sessions := session.NewManager(store, userRepo, session.WithPublisher(publisher))

	purged, err := sessions.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	logger.Info("Expired sessions purged", "count", purged)

	engine := router.New(cfg, router.Dependencies{
		AuthService:    services.NewAuthService(userRepo, services.NewBcryptHasher(), publisher),
		ProjectService: services.NewProjectService(projectRepo, publisher),
		TaskService:    services.NewTaskService(taskRepo, projectRepo, publisher),
		Sessions:       sessions,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSessionStore picks the session backend named by SESSION_STORE.
func newSessionStore(cfg *config.Config, db *gorm.DB) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "", "database":
		return session.NewGormStore(db), func() {}, nil
	case "redis":
		rdb, err := database.ConnectRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(rdb), func() { rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}
}
