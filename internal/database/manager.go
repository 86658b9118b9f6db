package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/airhealth/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database connection manager
type Manager struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *logrus.Logger
}

// Database configuration
type Config struct {
	DatabaseURL string
	RedisURL    string
	LogLevel    string
}

// NewManager creates a new database manager with connection pooling
func NewManager(config *Config, logger *logrus.Logger) (*Manager, error) {
	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if config.LogLevel == "debug" {
		gormLog = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Connect to Redis
	redisOpts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.PoolSize = 20
	redisOpts.MinIdleConns = 5

	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Database and Redis connections established successfully")

	return &Manager{
		DB:     db,
		Redis:  redisClient,
		logger: logger,
	}, nil
}

// Migrate runs database migrations
func (m *Manager) Migrate() error {
	m.logger.Info("Running database migrations...")

	return m.DB.AutoMigrate(
		&models.SurveyResponse{},
	)
}

// Close closes all database connections
func (m *Manager) Close() error {
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close Redis connection")
		}
	}

	if m.DB != nil {
		sqlDB, err := m.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

// Health check methods
func (m *Manager) PingDatabase() error {
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (m *Manager) PingRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Redis.Ping(ctx).Err()
}

// Cache wraps Redis with the dashboard's JSON cache-aside helpers.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	ChartKey = "dashboard:chart:%s"
	StatsKey = "dashboard:stats"
	AQIKey   = "aqi:reading:%s"
)

// SetJSON marshals value under key with an expiration.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON unmarshals the cached value at key into result.
func (c *Cache) GetJSON(ctx context.Context, key string, result interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), result)
}

// CacheChart caches one chart dataset by chart name.
func (c *Cache) CacheChart(ctx context.Context, chart string, points interface{}, expiration time.Duration) error {
	return c.SetJSON(ctx, fmt.Sprintf(ChartKey, chart), points, expiration)
}

// GetCachedChart retrieves a cached chart dataset.
func (c *Cache) GetCachedChart(ctx context.Context, chart string, result interface{}) error {
	return c.GetJSON(ctx, fmt.Sprintf(ChartKey, chart), result)
}

// CacheStats caches the KPI block.
func (c *Cache) CacheStats(ctx context.Context, stats interface{}, expiration time.Duration) error {
	return c.SetJSON(ctx, StatsKey, stats, expiration)
}

// GetCachedStats retrieves the cached KPI block.
func (c *Cache) GetCachedStats(ctx context.Context, result interface{}) error {
	return c.GetJSON(ctx, StatsKey, result)
}

// CacheAQI caches a live AQI reading for a city.
func (c *Cache) CacheAQI(ctx context.Context, city string, reading interface{}, expiration time.Duration) error {
	return c.SetJSON(ctx, fmt.Sprintf(AQIKey, city), reading, expiration)
}

// GetCachedAQI retrieves a cached AQI reading.
func (c *Cache) GetCachedAQI(ctx context.Context, city string, result interface{}) error {
	return c.GetJSON(ctx, fmt.Sprintf(AQIKey, city), result)
}

// InvalidateDashboard drops the cached stats and chart datasets, e.g.
// after a seeding run changes the underlying survey data.
func (c *Cache) InvalidateDashboard(ctx context.Context, charts []string) error {
	keys := []string{StatsKey}
	for _, chart := range charts {
		keys = append(keys, fmt.Sprintf(ChartKey, chart))
	}
	return c.client.Del(ctx, keys...).Err()
}
