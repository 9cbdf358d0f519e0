package model

import "time"

// ScanLog is one accepted checkpoint scan. Rows are append-only; the store
// assigns the monotonic log id.
type ScanLog struct {
	LogID     int64     `gorm:"column:log_id;primaryKey;autoIncrement" json:"log_id"`
	RFID      string    `gorm:"column:rfid;type:varchar(30);not null;index" json:"rfid"`
	CPID      string    `gorm:"column:cpid;type:varchar(30);not null;index" json:"cpid"`
	ScannedAt time.Time `gorm:"column:scanned_at;not null;index" json:"timestamp"`
}

func (ScanLog) TableName() string {
	return "scan_logs"
}

// DummyScanLog mirrors an accepted scan for a vehicle whose batch never
// reached the terminal checkpoint. Every row corresponds 1:1 to a prior
// ScanLog row from the same upload.
type DummyScanLog struct {
	LogID     int64     `gorm:"column:log_id;primaryKey;autoIncrement" json:"log_id"`
	RFID      string    `gorm:"column:rfid;type:varchar(30);not null;index" json:"rfid"`
	CPID      string    `gorm:"column:cpid;type:varchar(30);not null;index" json:"cpid"`
	ScannedAt time.Time `gorm:"column:scanned_at;not null" json:"timestamp"`
}

func (DummyScanLog) TableName() string {
	return "dummy_scan_logs"
}
