package db

import (
	"context"
	"fmt"
	"log/slog"

	"giftstore/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	DB *gorm.DB

	Users  *UserRepository
	Roles  *RoleRepository
	Tokens *TokenRepository
}

// NewStore opens postgres when POSTGRES_DSN is set. Without it the store
// has a nil DB and callers fall back to the in-memory store.
func NewStore(cfg config.Config, log *slog.Logger) (*Store, error) {
	if cfg.PostgresDSN == "" {
		log.Warn("POSTGRES_DSN not set; starting in no-db mode")
		return &Store{}, nil
	}
	gdb, err := Open(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(gdb), nil
}

func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}

func NewStoreFromDB(gdb *gorm.DB) *Store {
	return &Store{
		DB:     gdb,
		Users:  NewUserRepository(gdb),
		Roles:  NewRoleRepository(gdb),
		Tokens: NewTokenRepository(gdb),
	}
}

func (s *Store) Enabled() bool {
	return s != nil && s.DB != nil
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return errDBUnavailable
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
