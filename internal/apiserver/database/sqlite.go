package database

import (
	"path/filepath"
	"strings"

	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/amoylab/shopinspector/pkg/helper"

	"github.com/glebarez/sqlite"
)

// SQLite implements the Database interface using SQLite
type SQLite struct {
	gormDatabase
	cfg *config.DatabaseConfig
}

// NewSQLite creates a new SQLite instance
func NewSQLite(cfg *config.DatabaseConfig) (Database, error) {
	if !strings.HasPrefix(cfg.DBName, ":memory:") {
		if err := helper.EnsureDir(filepath.Dir(cfg.DBName)); err != nil {
			return nil, err
		}
	}

	// sqlite serialises writers anyway; one connection also keeps an in-memory database alive.
	gormDB, err := openGorm(sqlite.Open(cfg.GetDSN()), 1)
	if err != nil {
		return nil, err
	}

	return &SQLite{gormDatabase: gormDatabase{db: gormDB}, cfg: cfg}, nil
}
