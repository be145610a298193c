package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
	"github.com/noah-isme/internship-api/pkg/cache"
	"github.com/noah-isme/internship-api/pkg/config"
	"github.com/noah-isme/internship-api/pkg/database"
	"github.com/noah-isme/internship-api/pkg/events"
	"github.com/noah-isme/internship-api/pkg/jobs"
	"github.com/noah-isme/internship-api/pkg/storage"
)

// Container holds the wired infrastructure and services of one process.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics     *service.MetricsService
	Events      *service.EventService
	Access      *service.AccessService
	Roles       *service.RoleService
	Users       *service.UserService
	Profiles    *service.ProfileService
	Internships *service.InternshipService
	Evaluations *service.EvaluationService
	Auth        *service.AuthService
	Exports     *service.ExportService

	cache      *repository.CacheRepository
	eventQueue *jobs.Queue
	producer   *events.Producer
}

// New connects to Postgres and, when enabled, Redis and Kafka, then wires every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger, DB: db, Redis: rdb}
	if err := c.wire(); err != nil {
		c.Close(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *Container) wire() error {
	cfg := c.Config
	validate := validator.New()
	c.Metrics = service.NewMetricsService()

	permissionRepo := repository.NewPermissionRepository(c.DB)
	roleRepo := repository.NewRoleRepository(c.DB)
	userRepo := repository.NewUserRepository(c.DB)
	profileRepo := repository.NewProfileRepository(c.DB)
	internshipRepo := repository.NewInternshipRepository(c.DB)
	diaryRepo := repository.NewDiaryRepository(c.DB)
	evaluationRepo := repository.NewEvaluationRepository(c.DB)

	var cacheRepo service.CacheRepository
	if c.Redis != nil {
		c.cache = repository.NewCacheRepository(c.Redis, "internship:")
		cacheRepo = c.cache
	}
	cacheSvc := service.NewCacheService(cacheRepo, c.Metrics, cfg.Cache.TTL, c.Logger, cfg.Cache.Enabled && cacheRepo != nil)

	if cfg.Events.Enabled {
		c.producer = events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		c.eventQueue = jobs.NewQueue("domain-events", service.NewEventJobHandler(c.producer, c.Metrics), jobs.QueueConfig{
			Workers:    cfg.Events.Workers,
			MaxRetries: cfg.Events.MaxRetries,
			RetryDelay: cfg.Events.RetryDelay,
			Logger:     c.Logger,
		})
		c.Events = service.NewEventService(c.eventQueue, c.Metrics, c.Logger)
	} else {
		c.Events = service.NewEventService(nil, c.Metrics, c.Logger)
	}

	c.Roles = service.NewRoleService(roleRepo, permissionRepo, cacheSvc, userRepo, c.Logger)
	c.Access = service.NewAccessService(userRepo, c.Roles, c.Logger)
	c.Users = service.NewUserService(userRepo, roleRepo, c.Roles, c.Access, validate, c.Logger)
	c.Profiles = service.NewProfileService(profileRepo, c.Access, userRepo, c.Events, validate, c.Logger)
	c.Internships = service.NewInternshipService(internshipRepo, diaryRepo, evaluationRepo, userRepo, c.Access, userRepo, c.Events, validate, c.Logger)
	c.Evaluations = service.NewEvaluationService(evaluationRepo, internshipRepo, c.Access, userRepo, c.Events, validate, c.Logger)
	c.Auth = service.NewAuthService(userRepo, roleRepo, validate, c.Logger, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	c.Exports = service.NewExportService(c.Internships, profileRepo, store, signer, c.Metrics, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.ResultTTL,
	}, validate, c.Logger)
	return nil
}

// Start launches background workers: the event queue and the export cleanup loop.
func (c *Container) Start(ctx context.Context) {
	if c.eventQueue != nil {
		c.eventQueue.Start(ctx)
	}
	if c.Config.Exports.CleanupInterval > 0 {
		go c.cleanupExports(ctx, c.Config.Exports.CleanupInterval)
	}
}

func (c *Container) cleanupExports(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := c.Exports.Cleanup()
			if err != nil {
				c.Logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				c.Logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}

// Close drains the event queue and releases connections.
func (c *Container) Close(ctx context.Context) {
	if c.eventQueue != nil {
		c.eventQueue.Stop(ctx)
	}
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			c.Logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("close redis", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("close postgres", zap.Error(err))
		}
	}
}
