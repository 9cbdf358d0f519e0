package service

import (
	"io"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
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
	// A pooled second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchemaStatements {
		require.NoError(t, database.Exec(stmt).Error)
	}

	return database
}

func seedVehicle(t *testing.T, db *gorm.DB, rfid, baNo string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Vehicle{
		RFID: rfid,
		BaNo: baNo,
		Type: model.VehicleTypeB,
	}).Error)
}

func seedCheckpoints(t *testing.T, db *gorm.DB, lane string, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		require.NoError(t, db.Create(&model.Checkpoint{
			CPID: checkpointID(lane, i),
			Lane: lane,
		}).Error)
	}
}

func checkpointID(lane string, n int) string {
	return lane + "_CP" + strconv.Itoa(n)
}

func buildScanFile(t *testing.T, rows [][]string) io.Reader {
	t.Helper()
	return buildScanFileWithHeader(t, []string{"rfid", "cpid", "timestamp"}, rows)
}

func buildScanFileWithHeader(t *testing.T, header []string, rows [][]string) io.Reader {
	t.Helper()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)

	cell, err := excelize.CoordinatesToCellName(1, 1)
	require.NoError(t, err)
	require.NoError(t, workbook.SetSheetRow(sheet, cell, &header))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cell, &row))
	}

	buf, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	return buf
}
