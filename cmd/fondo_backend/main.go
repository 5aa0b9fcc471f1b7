package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/fondoapps/fondo_ledger_app/internal/adapters/notification"
	"github.com/fondoapps/fondo_ledger_app/internal/apperrors"
	"github.com/fondoapps/fondo_ledger_app/internal/core/domain"
	portsrepo "github.com/fondoapps/fondo_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fondoapps/fondo_ledger_app/internal/core/ports/services"
	"github.com/fondoapps/fondo_ledger_app/internal/core/services"
	"github.com/fondoapps/fondo_ledger_app/internal/handlers"
	"github.com/fondoapps/fondo_ledger_app/internal/middleware"
	rediscache "github.com/fondoapps/fondo_ledger_app/internal/repositories/cache/redis"
	"github.com/fondoapps/fondo_ledger_app/internal/repositories/database/pgsql"
	"github.com/fondoapps/fondo_ledger_app/internal/repositories/ledgerstore"
	"github.com/fondoapps/fondo_ledger_app/internal/utils"
	"github.com/fondoapps/fondo_ledger_app/pkg/config"
	"github.com/fondoapps/fondo_ledger_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/google/uuid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Fondo Ledger API
// @version 1.0
// @description Cash fund ledger and daily closing reconciliation backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis backs the fast ledger document cache; the app still works
	// without it, every read just falls through to Postgres.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ledgerStore := ledgerstore.New(
		pgsql.NewDocumentStore(dbPool),
		rediscache.NewLedgerCache(redisClient),
		logger,
		cfg.LocalCacheMovementLimit,
	)

	repos := &portsrepo.RepositoryProvider{
		LedgerStore: ledgerStore,
		UserRepo:    pgsql.NewUserRepository(dbPool),
	}

	if err := bootstrapAdmin(context.Background(), cfg, repos.UserRepo, logger); err != nil {
		logger.Error("Failed to bootstrap admin user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := services.NewContainer(repos, services.ContainerOptions{
		MaxMovementEdits: cfg.MaxMovementEdits,
		LegacyOwnerID:    cfg.LegacyOwnerID,
		Notifier:         buildClosingNotifier(cfg, logger),
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations before the server
// starts serving traffic.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations,
	// using the pgx/v5/stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// bootstrapAdmin seeds the principal administrator from the environment on
// first start. Without it a fresh deployment has no way to log in.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, userRepo portsrepo.UserRepository, logger *slog.Logger) error {
	if cfg.BootstrapAdminUsername == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}

	_, err := userRepo.FindUserByUsername(ctx, cfg.BootstrapAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}
	admin := domain.User{
		UserID:           uuid.NewString(),
		Username:         cfg.BootstrapAdminUsername,
		Name:             cfg.BootstrapAdminUsername,
		Role:             domain.RoleAdmin,
		IsPrincipalAdmin: true,
		PasswordHash:     hash,
		CreatedAt:        time.Now().UTC(),
	}
	if err := userRepo.SaveUser(ctx, admin); err != nil {
		return err
	}
	logger.Info("Principal admin user created", slog.String("username", admin.Username))
	return nil
}

func buildClosingNotifier(cfg *config.Config, logger *slog.Logger) portssvc.ClosingNotifier {
	if cfg.SMTPHost == "" || len(cfg.ClosingNotifyRecipients) == 0 {
		logger.Info("Closing email notifications disabled (no SMTP host or recipients configured).")
		return nil
	}
	sender := &notification.SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	return notification.NewEmailNotifier(sender, cfg.ClosingNotifyRecipients, logger)
}
