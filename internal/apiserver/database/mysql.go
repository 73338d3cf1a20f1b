package database

import (
	"github.com/amoylab/shopinspector/internal/common/config"

	"gorm.io/driver/mysql"
)

// MySQL implements the Database interface using MySQL
type MySQL struct {
	gormDatabase
	cfg *config.DatabaseConfig
}

// NewMySQL creates a new MySQL instance
func NewMySQL(cfg *config.DatabaseConfig) (Database, error) {
	gormDB, err := openGorm(mysql.Open(cfg.GetDSN()), 0)
	if err != nil {
		return nil, err
	}
	return &MySQL{gormDatabase: gormDatabase{db: gormDB}, cfg: cfg}, nil
}
