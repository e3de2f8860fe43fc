package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/johsire/dev-connector/adapter/out/mongodb"
	"github.com/johsire/dev-connector/adapter/out/persistence"
	"github.com/johsire/dev-connector/config"
	"github.com/johsire/dev-connector/core/service/profile"
	"github.com/johsire/dev-connector/infra/database"
	"github.com/johsire/dev-connector/pkg/cache"
	"github.com/johsire/dev-connector/pkg/logger"
)

// Dependencies holds the wired application graph.
type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	ProfileRepo *mongodb.ProfileAdapter
	UserRepo    *persistence.UserAdapter

	// Services
	ProfileService *profile.Service
}

// NewDependencies connects the backing stores and wires repositories
// and services. The returned cleanup closes every connection.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Identity database (pgxpool for health, sqlx for the user adapter)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Use the simple protocol so sqlx plays nicely with PgBouncer-style
	// poolers in front of the identity database.
	sqlxURL := cfg.DatabaseURL
	if strings.Contains(sqlxURL, "?") {
		sqlxURL += "&default_query_exec_mode=simple_protocol"
	} else {
		sqlxURL += "?default_query_exec_mode=simple_protocol"
	}
	sqlDB, err := sqlx.Connect("pgx", sqlxURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (optional; caching and token revocation degrade when absent)
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
	} else {
		logger.Warn("REDIS_URL not configured, cache and token blacklist disabled")
	}

	// Profile document store
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("failed to disconnect MongoDB")
		}
	})

	mongoDB := mongoClient.Database(cfg.MongoDBName)

	deps.ProfileRepo = mongodb.NewProfileAdapter(mongoDB)
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := deps.ProfileRepo.EnsureIndexes(indexCtx); err != nil {
		cleanup()
		return nil, nil, err
	}

	deps.UserRepo = persistence.NewUserAdapter(sqlDB)

	deps.ProfileService = profile.NewService(
		deps.ProfileRepo,
		deps.UserRepo,
		profile.WithOpTimeout(cfg.OpTimeout),
		profile.WithCache(cache.NewRedisCache(deps.Redis, "devconnector:"), cfg.CacheTTL),
	)

	return deps, cleanup, nil
}
