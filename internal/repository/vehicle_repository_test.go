package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"checkpoint-service/internal/model"
)

// testSchemaStatements mirrors internal/db/migrations.go in sqlite form so
// the suite runs against the same constraints production enforces,
// foreign keys included.
var testSchemaStatements = []string{
	`CREATE TABLE checkpoints (
		cpid VARCHAR(30) PRIMARY KEY,
		lane VARCHAR(5)
	);`,
	`CREATE TABLE vehicle_details (
		rfid VARCHAR(30) PRIMARY KEY,
		ba_no VARCHAR(30),
		type_of_veh VARCHAR(5) NOT NULL DEFAULT 'B',
		unit VARCHAR(20),
		formation VARCHAR(20),
		lane VARCHAR(5),
		no_of_trps INTEGER,
		purpose VARCHAR(30),
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE scan_logs (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		rfid VARCHAR(30) NOT NULL REFERENCES vehicle_details(rfid),
		cpid VARCHAR(30) NOT NULL REFERENCES checkpoints(cpid),
		scanned_at DATETIME NOT NULL
	);`,
	`CREATE TABLE dummy_scan_logs (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		rfid VARCHAR(30) NOT NULL REFERENCES vehicle_details(rfid),
		cpid VARCHAR(30) NOT NULL REFERENCES checkpoints(cpid),
		scanned_at DATETIME NOT NULL
	);`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchemaStatements {
		require.NoError(t, database.Exec(stmt).Error)
	}

	return database
}

func TestListRFIDsReturnsSnapshot(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	snapshot, err := repo.ListRFIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	require.NoError(t, db.Create(&model.Vehicle{RFID: "RFID001", Type: model.VehicleTypeB}).Error)
	require.NoError(t, db.Create(&model.Vehicle{RFID: "RFID002", Type: model.VehicleTypeB}).Error)

	snapshot, err = repo.ListRFIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot, 2)
	_, ok := snapshot["RFID001"]
	assert.True(t, ok)

	// The returned set is a copy; later registry writes do not appear in it.
	require.NoError(t, db.Create(&model.Vehicle{RFID: "RFID003", Type: model.VehicleTypeB}).Error)
	_, ok = snapshot["RFID003"]
	assert.False(t, ok)
}

func TestGetBaNoDistinguishesMissingFromFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	require.NoError(t, db.Create(&model.Vehicle{RFID: "RFID001", BaNo: "BAX01", Type: model.VehicleTypeB}).Error)

	baNo, found, err := repo.GetBaNo(context.Background(), "RFID001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "BAX01", baNo)

	_, found, err = repo.GetBaNo(context.Background(), "GHOST")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDistinctFilterOptionsSkipsNullColumns(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	require.NoError(t, db.Create(&model.Vehicle{
		RFID: "RFID001", BaNo: "BA001", Type: model.VehicleTypeB,
		Unit: "U1", Formation: "F1", Purpose: "CONVOY",
	}).Error)
	// Registry rows loaded out-of-band carry NULLs in the optional columns.
	require.NoError(t, db.Exec(
		"INSERT INTO vehicle_details (rfid, ba_no, type_of_veh) VALUES (?, ?, ?)",
		"RFID002", "BA002", "B",
	).Error)

	options, err := repo.DistinctFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"U1"}, options.Units)
	assert.Equal(t, []string{"F1"}, options.Formations)
	assert.Equal(t, []string{"B"}, options.Types)
	assert.Equal(t, []string{"CONVOY"}, options.Purposes)
}

func TestUpdateTypeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	require.NoError(t, db.Create(&model.Vehicle{RFID: "RFID001", BaNo: "BAX01", Type: model.VehicleTypeB}).Error)

	require.NoError(t, repo.UpdateType(context.Background(), "RFID001", model.VehicleTypeA))
	require.NoError(t, repo.UpdateType(context.Background(), "RFID001", model.VehicleTypeA))

	var vehicle model.Vehicle
	require.NoError(t, db.Where("rfid = ?", "RFID001").First(&vehicle).Error)
	assert.Equal(t, model.VehicleTypeA, vehicle.Type)
}
