// Package db persists the board as a key-value snapshot: one key for the
// roster, one for the unassigned pool and one per zone.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	dbmodels "github.com/gartstein/staffboard/internal/board/db/models"
	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	EmployeesKey  = "employees"
	UnassignedKey = "unassigned"
	zoneKeyPrefix = "zone:"
)

// ZoneKey returns the key holding the occupants of zone.
func ZoneKey(zone models.ZoneID) string {
	return zoneKeyPrefix + string(zone)
}

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

func NewRepository(cfg *Config) (*Repository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Get returns the value stored under key.
func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var entry dbmodels.KVEntry
	result := r.db.WithContext(ctx).First(&entry, "entry_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", e.ErrNotFound
		}
		return "", result.Error
	}
	return entry.Value, nil
}

// Keys lists the stored keys that start with prefix.
func (r *Repository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	result := r.db.WithContext(ctx).Model(&dbmodels.KVEntry{}).
		Where("entry_key LIKE ?", prefix+"%").
		Order("entry_key").
		Pluck("entry_key", &keys)
	return keys, result.Error
}

// ReplaceAll overwrites the whole store with entries.
func (r *Repository) ReplaceAll(ctx context.Context, entries map[string]string) error {
	return r.WithTransaction(ctx, func(repo *Repository) error {
		if err := repo.db.Where("1 = 1").Delete(&dbmodels.KVEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]dbmodels.KVEntry, 0, len(entries))
		for k, v := range entries {
			rows = append(rows, dbmodels.KVEntry{Key: k, Value: v})
		}
		return repo.db.Create(&rows).Error
	})
}

// LoadSnapshot reads the board. Missing keys load as empty collections.
func (r *Repository) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Employees:  []models.Employee{},
		Unassigned: []uuid.UUID{},
		Zones:      make(map[models.ZoneID][]uuid.UUID),
	}

	if err := r.loadJSON(ctx, EmployeesKey, &snap.Employees); err != nil {
		return nil, err
	}
	if err := r.loadJSON(ctx, UnassignedKey, &snap.Unassigned); err != nil {
		return nil, err
	}

	keys, err := r.Keys(ctx, zoneKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list zone keys: %w", err)
	}
	for _, key := range keys {
		var ids []uuid.UUID
		if err := r.loadJSON(ctx, key, &ids); err != nil {
			return nil, err
		}
		snap.Zones[models.ZoneID(strings.TrimPrefix(key, zoneKeyPrefix))] = ids
	}
	return snap, nil
}

// SaveSnapshot overwrites the stored board with snap in one transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	entries := make(map[string]string, len(snap.Zones)+2)
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries[key] = string(b)
		return nil
	}

	if err := put(EmployeesKey, nonNil(snap.Employees)); err != nil {
		return err
	}
	if err := put(UnassignedKey, nonNil(snap.Unassigned)); err != nil {
		return err
	}
	for zone, ids := range snap.Zones {
		if err := put(ZoneKey(zone), nonNil(ids)); err != nil {
			return err
		}
	}
	return r.ReplaceAll(ctx, entries)
}

func (r *Repository) loadJSON(ctx context.Context, key string, dst any) error {
	raw, err := r.Get(ctx, key)
	if errors.Is(err, e.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
