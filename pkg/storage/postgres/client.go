package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"ctrmdash/config"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresClient struct {
	DB *gorm.DB
}

func NewClient(dsn string) (*PostgresClient, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresClient{DB: db}, nil
}

// NewClientFromConn wraps an existing connection pool.
func NewClientFromConn(conn *sql.DB) (*PostgresClient, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	return &PostgresClient{DB: db}, nil
}

// InitializeAndMigratePriceRecord connects to Postgres, optionally creates the
// DB, applies the pool limits and runs AutoMigrate.
func InitializeAndMigratePriceRecord(ctx context.Context, cfg config.PostgresConfig, env string) (*PostgresClient, error) {
	if cfg.CreateDB {
		if err := CreateDatabase(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	client, err := NewClient(cfg.DSN(env))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := client.Prepare(cfg); err != nil {
		return nil, err
	}

	return client, nil
}

// Prepare applies the pool limits and migrates the schema. The pool is closed
// when either step fails.
func (p *PostgresClient) Prepare(cfg config.PostgresConfig) error {
	err := p.configurePool(cfg)
	if err == nil {
		if err = p.AutoMigratePriceRecord(); err != nil {
			err = fmt.Errorf("migration failed: %w", err)
		}
	}
	if err != nil {
		if cerr := p.Close(); cerr != nil {
			return fmt.Errorf("%w (close: %v)", err, cerr)
		}
		return err
	}
	return nil
}

func (p *PostgresClient) configurePool(cfg config.PostgresConfig) error {
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return nil
}

func (p *PostgresClient) AutoMigratePriceRecord() error {
	if err := p.DB.AutoMigrate(&PriceRecord{}); err != nil {
		return fmt.Errorf("auto-migrate price table: %w", err)
	}
	return nil
}

func (p *PostgresClient) IsHealthy(ctx context.Context) bool {
	db, err := p.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (p *PostgresClient) Close() error {
	db, err := p.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}
