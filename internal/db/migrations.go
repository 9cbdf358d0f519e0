package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS checkpoints (
		cpid VARCHAR(30) PRIMARY KEY,
		lane VARCHAR(5)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_checkpoints_lane ON checkpoints (lane);`,
	`CREATE TABLE IF NOT EXISTS vehicle_details (
		rfid VARCHAR(30) PRIMARY KEY,
		ba_no VARCHAR(30),
		type_of_veh VARCHAR(5) NOT NULL DEFAULT 'B',
		unit VARCHAR(20),
		formation VARCHAR(20),
		lane VARCHAR(5),
		no_of_trps INTEGER,
		purpose VARCHAR(30),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_details_type ON vehicle_details (type_of_veh);`,
	`CREATE TABLE IF NOT EXISTS scan_logs (
		log_id BIGSERIAL PRIMARY KEY,
		rfid VARCHAR(30) NOT NULL REFERENCES vehicle_details(rfid),
		cpid VARCHAR(30) NOT NULL REFERENCES checkpoints(cpid),
		scanned_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_scan_logs_rfid ON scan_logs (rfid);`,
	`CREATE INDEX IF NOT EXISTS idx_scan_logs_cpid ON scan_logs (cpid);`,
	`CREATE INDEX IF NOT EXISTS idx_scan_logs_scanned_at ON scan_logs (scanned_at);`,
	`CREATE TABLE IF NOT EXISTS dummy_scan_logs (
		log_id BIGSERIAL PRIMARY KEY,
		rfid VARCHAR(30) NOT NULL REFERENCES vehicle_details(rfid),
		cpid VARCHAR(30) NOT NULL REFERENCES checkpoints(cpid),
		scanned_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_dummy_scan_logs_rfid ON dummy_scan_logs (rfid);`,
	`CREATE INDEX IF NOT EXISTS idx_dummy_scan_logs_cpid ON dummy_scan_logs (cpid);`,
	// Checkpoint reference data: four lanes, ten checkpoints each. The cpid
	// carries the lane prefix, e.g. L2_CP7.
	`INSERT INTO checkpoints (cpid, lane)
		SELECT l.lane || '_CP' || n.cp, l.lane
		FROM (VALUES ('L1'), ('L2'), ('L3'), ('L4')) AS l(lane),
			generate_series(1, 10) AS n(cp)
	ON CONFLICT (cpid) DO NOTHING;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
