// Package profilestore reads user profiles from the users database through
// gorm. Reads are spread across replicas when any are configured.
package profilestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/MyNameIsWhaaat/socialfeed/internal/timeline"
)

type UserProfile struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:120;not null"`
	Profile   string
	UpdatedAt time.Time
}

func (UserProfile) TableName() string { return "profiles" }

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProfile(ctx context.Context, uid string) (timeline.Profile, error) {
	var p UserProfile
	err := s.db.WithContext(ctx).First(&p, "user_id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return timeline.Profile{}, timeline.ErrUserNotFound
	}
	if err != nil {
		return timeline.Profile{}, err
	}
	return toProfile(p), nil
}

func toProfile(p UserProfile) timeline.Profile {
	return timeline.Profile{Name: p.Name, Profile: p.Profile}
}

// Open connects to dsn and registers replicas for reads.
func Open(dsn string, replicas []string, attempts int) (*gorm.DB, error) {
	db, err := openWithRetry(dsn, attempts, time.Second)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if len(replicas) > 0 {
		var rs []gorm.Dialector
		for _, r := range replicas {
			rs = append(rs, postgres.Open(r))
		}
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: rs,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("dbresolver: %w", err)
		}
	}
	return db, nil
}

func openWithRetry(dsn string, attempts int, sleep time.Duration) (*gorm.DB, error) {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 1; i <= attempts; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			var s *sql.DB
			if s, err = db.DB(); err == nil {
				if err = pingWithTimeout(s, 2*time.Second); err == nil {
					return db, nil
				}
			}
		}
		last = err
		if i < attempts {
			time.Sleep(sleep)
			if sleep < 8*time.Second {
				sleep *= 2
			}
		}
	}
	return nil, last
}

func pingWithTimeout(db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
