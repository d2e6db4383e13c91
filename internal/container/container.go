package container

import (
	"context"
	"fmt"

	"stock-empire/internal/config"
	"stock-empire/internal/market"
	"stock-empire/internal/repository"
	"stock-empire/internal/service"
	"stock-empire/internal/service/auth"
	"stock-empire/internal/viewlimit"
	"stock-empire/pkg/database"
	"stock-empire/pkg/logger"
	"stock-empire/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	RedisClient  *redis.Client
	DB           *database.PostgresDB
	Repositories *repository.Repositories
	Services     *service.Services
	ViewLimits   *viewlimit.Tracker
}

// New creates a new dependency injection container. Redis and PostgreSQL are
// optional: without Redis the ledger lives in a JSON file and view limits in
// memory, without PostgreSQL no snapshots are taken.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, falling back to local state")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, using local state")
	}

	var db *database.PostgresDB
	if cfg.DatabaseURL != "" {
		pg, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, cfg.DatabaseReadURL)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect to database, snapshots disabled")
		} else {
			db = pg
			logger.Info("Database connection pool initialized successfully")
		}
	}

	catalogue, err := market.LoadCatalogue(cfg.ThemesFile)
	if err != nil {
		closeAll(redisClient, db)
		return nil, fmt.Errorf("failed to load theme catalogue: %w", err)
	}

	repos := newRepositories(cfg, redisClient, db)

	var store viewlimit.Store = viewlimit.NewMemoryStore()
	if redisClient != nil {
		store = viewlimit.NewRedisStore(redisClient)
	}

	// Initialize services
	var cache *service.CacheService
	if redisClient != nil {
		cache = service.NewCacheService(redisClient, logger.Named("cache").Logger)
	}

	var users service.UserCounter
	if cfg.IdentityAPIURL != "" {
		users = service.NewIdentityClient(cfg.IdentityAPIURL, cfg.IdentityAPIKey, cfg.IdentityTimeout, logger.Named("identity"))
	}

	quotes := service.NewQuoteService(market.NewYahooClient(cfg.QuoteBaseURL, cfg.QuoteTimeout), cache, logger.Named("quotes"))

	news := service.NewNewsService(repos.Feeds, service.NewsFiles{
		Breaking: cfg.BreakingNewsFile,
		KR:       cfg.KRNewsFile,
		US:       cfg.USNewsFile,
	}, logger.Named("news"))
	rates := market.NewExchangeRateClient(cfg.ExchangeRateBaseURL, cfg.QuoteTimeout)

	services := &service.Services{
		Auth: auth.NewService(cfg.IdentityJWTSecret, logger.Named("auth")),
		Analytics: service.NewAnalyticsService(repos.Ledger, repos.Snapshots, redisClient, users, service.AnalyticsConfig{
			SnapshotInterval:     cfg.SnapshotInterval,
			VisitRateLimit:       cfg.VisitRateLimit,
			PlaceholderUserCount: cfg.PlaceholderUserCount,
		}, logger.Named("analytics")),
		Quotes:  quotes,
		Signals: service.NewSignalService(quotes, catalogue, market.DemoAnalyst{}, logger.Named("signals")),
		News:    news,
		Picks:   service.NewPicksService(quotes, news, rates, logger.Named("picks")),
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		RedisClient:  redisClient,
		DB:           db,
		Repositories: repos,
		Services:     services,
		ViewLimits:   viewlimit.NewTracker(store, cfg.ViewLimitLocation),
	}, nil
}

func newRepositories(cfg *config.Config, redisClient *redis.Client, db *database.PostgresDB) *repository.Repositories {
	repos := &repository.Repositories{
		Feeds: repository.NewFeedRepository(cfg.DataDirs),
	}

	if redisClient != nil {
		repos.Ledger = repository.NewRedisLedgerStore(redisClient)
	} else {
		repos.Ledger = repository.NewFileLedgerStore(cfg.AnalyticsFile)
	}

	if db != nil {
		repos.Snapshots = repository.NewSnapshotRepository(db)
	}
	return repos
}

func closeAll(redisClient *redis.Client, db *database.PostgresDB) {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		db.Close()
	}
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HasDatabase returns true if PostgreSQL is available
func (c *Container) HasDatabase() bool {
	return c.DB != nil
}

// Close releases the Redis and PostgreSQL connections
func (c *Container) Close() {
	closeAll(c.RedisClient, c.DB)
}
