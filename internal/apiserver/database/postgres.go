package database

import (
	"github.com/amoylab/shopinspector/internal/common/config"

	"gorm.io/driver/postgres"
)

// Postgres implements the Database interface using PostgreSQL
type Postgres struct {
	gormDatabase
	cfg *config.DatabaseConfig
}

// NewPostgres creates a new Postgres instance
func NewPostgres(cfg *config.DatabaseConfig) (Database, error) {
	gormDB, err := openGorm(postgres.Open(cfg.GetDSN()), 0)
	if err != nil {
		return nil, err
	}
	return &Postgres{gormDatabase: gormDatabase{db: gormDB}, cfg: cfg}, nil
}
