package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database defines the methods for database operations.
type Database interface {
	// DB returns the gorm handle bound to the pool.
	DB() *gorm.DB

	// Transaction runs fn inside one transaction carried by the context passed to fn.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the database connection.
	Close() error
}

// gormDatabase is shared by every driver; drivers only differ in how they open the dialector.
type gormDatabase struct {
	db *gorm.DB
}

// openGorm opens the pool, limits it to maxOpenConns when positive and migrates the schema.
func openGorm(dialector gorm.Dialector, maxOpenConns int) (*gorm.DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return gormDB, nil
}

func (g *gormDatabase) DB() *gorm.DB {
	return g.db
}

func (g *gormDatabase) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, g.db, fn)
}

// Close closes the database connection
func (g *gormDatabase) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
