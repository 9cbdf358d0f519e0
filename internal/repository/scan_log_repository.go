package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"checkpoint-service/internal/model"
)

type ScanLogRepository struct {
	db *gorm.DB
}

func NewScanLogRepository(db *gorm.DB) *ScanLogRepository {
	return &ScanLogRepository{db: db}
}

func (r *ScanLogRepository) Append(ctx context.Context, entry *model.ScanLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ScanLogRepository) AppendDummy(ctx context.Context, entries []model.DummyScanLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// HasTerminalScan reports whether any historical scan of the vehicle ends
// with the terminal checkpoint suffix. Used by the manual scan endpoint,
// which unlike batch ingest looks at the full log history.
func (r *ScanLogRepository) HasTerminalScan(ctx context.Context, rfid, suffix string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ScanLog{}).
		Where("rfid = ? AND cpid LIKE ?", rfid, "%"+suffix).
		Count(&count).Error
	return count > 0, err
}

// LivePositionRow is a vehicle's most recent scan joined with its registry
// record and the checkpoint's lane.
type LivePositionRow struct {
	RFID      string            `gorm:"column:rfid" json:"rfid"`
	Type      model.VehicleType `gorm:"column:type_of_veh" json:"type_of_veh"`
	BaNo      string            `json:"ba_no"`
	Unit      string            `json:"unit"`
	Formation string            `json:"formation"`
	Purpose   string            `json:"purpose"`
	CPID      string            `gorm:"column:cpid" json:"cpid"`
	Lane      string            `json:"lane"`
	ScannedAt time.Time         `gorm:"column:scanned_at" json:"timestamp"`
}

func (r *ScanLogRepository) LatestPositions(ctx context.Context) ([]LivePositionRow, error) {
	var rows []LivePositionRow
	err := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select(`
			sl.rfid,
			vd.type_of_veh,
			vd.ba_no,
			vd.unit,
			vd.formation,
			vd.purpose,
			sl.cpid,
			c.lane,
			sl.scanned_at
		`).
		Joins(`INNER JOIN (
			SELECT rfid, MAX(scanned_at) AS max_time
			FROM scan_logs
			GROUP BY rfid
		) latest ON sl.rfid = latest.rfid AND sl.scanned_at = latest.max_time`).
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid").
		Joins("JOIN vehicle_details vd ON vd.rfid = sl.rfid").
		Order("sl.scanned_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScanLogRepository) RecentActivity(ctx context.Context, limit int) ([]LivePositionRow, error) {
	var rows []LivePositionRow
	err := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select(`
			sl.rfid,
			vd.type_of_veh,
			vd.ba_no,
			vd.unit,
			vd.formation,
			vd.purpose,
			sl.cpid,
			c.lane,
			sl.scanned_at
		`).
		Joins("JOIN vehicle_details vd ON vd.rfid = sl.rfid").
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid").
		Order("sl.scanned_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LaneStatusRow summarises recent movement in one lane.
type LaneStatusRow struct {
	Lane           string    `json:"lane"`
	ActiveVehicles int64     `gorm:"column:active_vehicles" json:"active_vehicles"`
	LastActivity   time.Time `gorm:"column:last_activity" json:"last_activity"`
}

func (r *ScanLogRepository) LaneActivity(ctx context.Context, since time.Time) ([]LaneStatusRow, error) {
	var rows []LaneStatusRow
	err := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select(`
			c.lane,
			COUNT(DISTINCT sl.rfid) AS active_vehicles,
			MAX(sl.scanned_at) AS last_activity
		`).
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid").
		Where("sl.scanned_at >= ?", since).
		Group("c.lane").
		Order("c.lane").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LogFilter narrows the scan log search by registry attributes. Nil fields
// are ignored.
type LogFilter struct {
	Unit      *string
	Formation *string
	Type      *model.VehicleType
	Purpose   *string
}

type FilteredLogRow struct {
	RFID      string            `gorm:"column:rfid" json:"rfid"`
	CPID      string            `gorm:"column:cpid" json:"cpid"`
	ScannedAt time.Time         `gorm:"column:scanned_at" json:"timestamp"`
	Unit      string            `json:"unit"`
	Formation string            `json:"formation"`
	Type      model.VehicleType `gorm:"column:type_of_veh" json:"type_of_veh"`
	Purpose   string            `json:"purpose"`
	Lane      string            `json:"lane"`
}

func (r *ScanLogRepository) Filter(ctx context.Context, filter LogFilter, limit int) ([]FilteredLogRow, error) {
	query := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select(`
			sl.rfid,
			sl.cpid,
			sl.scanned_at,
			vd.unit,
			vd.formation,
			vd.type_of_veh,
			vd.purpose,
			c.lane
		`).
		Joins("JOIN vehicle_details vd ON sl.rfid = vd.rfid").
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid")

	if filter.Unit != nil {
		query = query.Where("vd.unit = ?", *filter.Unit)
	}
	if filter.Formation != nil {
		query = query.Where("vd.formation = ?", *filter.Formation)
	}
	if filter.Type != nil {
		query = query.Where("vd.type_of_veh = ?", *filter.Type)
	}
	if filter.Purpose != nil {
		query = query.Where("vd.purpose = ?", *filter.Purpose)
	}

	var rows []FilteredLogRow
	err := query.Order("sl.scanned_at DESC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
