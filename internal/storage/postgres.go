package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/db"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postgresSchema = "app_demo"

type Entry struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Entry) TableName() string { return postgresSchema + ".storage_entries" }

// Postgres keeps every key in one table.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres ensures the schema and table exist on gdb.
func NewPostgres(gdb *gorm.DB) (*Postgres, error) {
	if err := db.EnsureSchema(gdb, postgresSchema); err != nil {
		return nil, fmt.Errorf("ensure schema %s: %w", postgresSchema, err)
	}
	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("auto-migrate storage entries: %w", err)
	}
	return &Postgres{db: gdb}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := p.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (p *Postgres) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return p.db.WithContext(ctx).
		Exec(`DELETE FROM `+Entry{}.TableName()+` WHERE key = ANY(?)`, pq.Array(keys)).Error
}

func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := p.db.WithContext(ctx).Model(&Entry{}).
		Where("starts_with(key, ?)", prefix).
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}
