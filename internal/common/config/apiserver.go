package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/amoylab/shopinspector/pkg/trace"
)

type (
	APIServerConfig struct {
		Server      ServerConfig      `yaml:"server"`
		Database    DatabaseConfig    `yaml:"database"`
		Storage     StorageConfig     `yaml:"storage"`
		Cache       CacheConfig       `yaml:"cache"`
		Maintenance MaintenanceConfig `yaml:"maintenance"`
		Logger      LoggerConfig      `yaml:"logger"`
		JWT         JWTConfig         `yaml:"jwt"`
		SuperAdmin  SuperAdminConfig  `yaml:"super_admin"`
		Metrics     MetricsConfig     `yaml:"metrics"`
		Tracing     trace.Config      `yaml:"tracing"`
	}

	ServerConfig struct {
		Port int `yaml:"port"`
		// PublicBaseURL is the externally reachable root used in QR codes
		PublicBaseURL string `yaml:"public_base_url"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	// StorageConfig holds the data directory; photos live under uploads/ and QR images under qrcodes/
	StorageConfig struct {
		DataDir      string `yaml:"data_dir"`
		MaxPhotoSize int64  `yaml:"max_photo_size"` // bytes
	}

	// CacheConfig configures the QR code cache; Redis is used when RedisAddr is set
	CacheConfig struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
		MaxMemory     int64         `yaml:"max_memory"` // bytes
	}

	// MaintenanceConfig schedules the orphaned photo sweep; a zero interval disables it
	MaintenanceConfig struct {
		SweepInterval time.Duration `yaml:"sweep_interval"`
		PhotoGrace    time.Duration `yaml:"photo_grace"`
	}

	JWTConfig struct {
		SecretKey string        `yaml:"secret_key"`
		Duration  time.Duration `yaml:"duration"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Path      string    `yaml:"path"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

const defaultMaxPhotoSize = 20 * 1024 * 1024

func (c *APIServerConfig) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5235
	}
	c.Server.PublicBaseURL = strings.TrimRight(c.Server.PublicBaseURL, "/")
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Storage.MaxPhotoSize <= 0 {
		c.Storage.MaxPhotoSize = defaultMaxPhotoSize
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Maintenance.PhotoGrace <= 0 {
		c.Maintenance.PhotoGrace = time.Hour
	}
	if c.JWT.Duration <= 0 {
		c.JWT.Duration = 24 * time.Hour
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "shopinspector"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "shopinspector"
	}
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return c.getPostgresDSN()
	case "mysql":
		return c.getMySQLDSN()
	case "sqlite":
		return c.getSQLiteDSN()
	default:
		return ""
	}
}

// getPostgresDSN returns PostgreSQL connection string
func (c *DatabaseConfig) getPostgresDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, sslMode)
}

// getMySQLDSN returns MySQL connection string
func (c *DatabaseConfig) getMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// getSQLiteDSN returns the sqlite file path with foreign key enforcement switched on
func (c *DatabaseConfig) getSQLiteDSN() string {
	sep := "?"
	if strings.Contains(c.DBName, "?") {
		sep = "&"
	}
	return c.DBName + sep + "_pragma=foreign_keys(1)"
}
