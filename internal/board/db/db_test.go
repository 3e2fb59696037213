package db

import (
	"context"
	"testing"
	"time"

	dbmodels "github.com/gartstein/staffboard/internal/board/db/models"
	e "github.com/gartstein/staffboard/internal/board/errors"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&dbmodels.KVEntry{})
	require.NoError(t, err, "failed to migrate test database")

	return &Repository{db: db}
}

func sampleSnapshot() *models.Snapshot {
	tech := models.Employee{
		ID:          uuid.New(),
		Name:        "Tess Tech",
		Role:        models.RoleTechnician,
		Email:       "tess@example.com",
		Photo:       "/assets/placeholders/technician.png",
		Experiences: []models.WorkExperience{{Description: "Ops", Start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Ongoing: true}},
		CurrentZone: models.ZoneServer.Ptr(),
		CreatedAt:   time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	dev := models.Employee{
		ID:          uuid.New(),
		Name:        "Dev Dana",
		Role:        models.RoleDeveloper,
		Email:       "dana@example.com",
		Experiences: []models.WorkExperience{},
		CreatedAt:   time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	zones := make(map[models.ZoneID][]uuid.UUID)
	for _, z := range models.AllZones() {
		zones[z] = []uuid.UUID{}
	}
	zones[models.ZoneServer] = []uuid.UUID{tech.ID}
	return &models.Snapshot{
		Employees:  []models.Employee{tech, dev},
		Unassigned: []uuid.UUID{dev.ID},
		Zones:      zones,
	}
}

// TestSnapshotRoundTrip stores a board and reads it back.
func TestSnapshotRoundTrip(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	snap := sampleSnapshot()

	require.NoError(t, repo.SaveSnapshot(ctx, snap))

	loaded, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Unassigned, loaded.Unassigned)
	assert.Equal(t, snap.Zones, loaded.Zones)
	require.Len(t, loaded.Employees, 2)
	assert.Equal(t, snap.Employees[0].ID, loaded.Employees[0].ID)
	assert.Equal(t, models.ZoneServer, *loaded.Employees[0].CurrentZone)
	assert.Nil(t, loaded.Employees[1].CurrentZone)
	assert.True(t, snap.Employees[0].CreatedAt.Equal(loaded.Employees[0].CreatedAt))
}

// TestLoadSnapshotEmpty treats missing keys as empty collections.
func TestLoadSnapshotEmpty(t *testing.T) {
	repo := SetupTestDB(t)

	loaded, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Employees)
	assert.Empty(t, loaded.Unassigned)
	assert.Empty(t, loaded.Zones)
}

// TestSaveSnapshotOverwrites drops keys absent from the newer snapshot.
func TestSaveSnapshotOverwrites(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()

	first := sampleSnapshot()
	first.Zones["roof"] = []uuid.UUID{uuid.New()}
	require.NoError(t, repo.SaveSnapshot(ctx, first))

	second := sampleSnapshot()
	second.Employees = nil
	second.Unassigned = nil
	require.NoError(t, repo.SaveSnapshot(ctx, second))

	loaded, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Employees)
	assert.Empty(t, loaded.Unassigned)
	assert.NotContains(t, loaded.Zones, models.ZoneID("roof"))
	assert.Len(t, loaded.Zones, len(models.AllZones()))

	raw, err := repo.Get(ctx, EmployeesKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

// TestGetNotFound verifies error handling when the key does not exist.
func TestGetNotFound(t *testing.T) {
	repo := SetupTestDB(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

// TestLoadSnapshotCorrupt reports undecodable values.
func TestLoadSnapshotCorrupt(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, map[string]string{UnassignedKey: "{not json"}))

	_, err := repo.LoadSnapshot(ctx)
	assert.ErrorContains(t, err, "failed to decode unassigned")
}

// TestKeys lists zone keys in order.
func TestKeys(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSnapshot(ctx, sampleSnapshot()))

	keys, err := repo.Keys(ctx, "zone:")
	require.NoError(t, err)
	assert.Equal(t, []string{
		ZoneKey(models.ZoneArchives),
		ZoneKey(models.ZoneConference),
		ZoneKey(models.ZoneReception),
		ZoneKey(models.ZoneSecurity),
		ZoneKey(models.ZoneServer),
		ZoneKey(models.ZoneStaff),
	}, keys)
}

// TestWithTransactionRollback leaves the store untouched when fn fails.
func TestWithTransactionRollback(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSnapshot(ctx, sampleSnapshot()))

	err := repo.WithTransaction(ctx, func(txRepo *Repository) error {
		if err := txRepo.db.Where("1 = 1").Delete(&dbmodels.KVEntry{}).Error; err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.Get(ctx, EmployeesKey)
	assert.NoError(t, err)
}

func TestNewRepository_UnsupportedDriver(t *testing.T) {
	_, err := NewRepository(&Config{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewRepository_SQLite(t *testing.T) {
	repo, err := NewRepository(&Config{Driver: "sqlite", SQLitePath: t.TempDir() + "/board.db"})
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.SaveSnapshot(context.Background(), sampleSnapshot()))
	loaded, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Employees, 2)
}
