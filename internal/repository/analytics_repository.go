package repository

import (
	"context"

	"gorm.io/gorm"

	"checkpoint-service/internal/model"
)

// AnalyticsRepository serves the dashboard's grouped-count reads. These are
// pass-through aggregations with no business logic of their own.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

type LaneCount struct {
	Lane  string `json:"lane"`
	Count int64  `gorm:"column:vehicle_count" json:"count"`
}

// IncompleteByLane counts dummy log rows per lane, the share of scans that
// never reached the terminal checkpoint.
func (r *AnalyticsRepository) IncompleteByLane(ctx context.Context) ([]LaneCount, error) {
	var rows []LaneCount
	err := r.db.WithContext(ctx).
		Table("dummy_scan_logs d").
		Select("c.lane, COUNT(*) AS vehicle_count").
		Joins("JOIN checkpoints c ON d.cpid = c.cpid").
		Group("c.lane").
		Order("c.lane").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// VehiclesByLane counts distinct vehicles seen in each lane.
func (r *AnalyticsRepository) VehiclesByLane(ctx context.Context) ([]LaneCount, error) {
	var rows []LaneCount
	err := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select("c.lane, COUNT(DISTINCT sl.rfid) AS vehicle_count").
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid").
		Group("c.lane").
		Order("c.lane").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type CheckpointCount struct {
	CPID  string `gorm:"column:cpid" json:"cpid"`
	Count int64  `gorm:"column:vehicle_count" json:"count"`
}

// VehiclesByCheckpoint counts distinct vehicles per checkpoint within one
// lane, ordered by cpid.
func (r *AnalyticsRepository) VehiclesByCheckpoint(ctx context.Context, lane string) ([]CheckpointCount, error) {
	var rows []CheckpointCount
	err := r.db.WithContext(ctx).
		Table("scan_logs sl").
		Select("c.cpid, COUNT(DISTINCT sl.rfid) AS vehicle_count").
		Joins("JOIN checkpoints c ON sl.cpid = c.cpid").
		Where("c.lane = ?", lane).
		Group("c.cpid").
		Order("c.cpid").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type TypeCount struct {
	Type  model.VehicleType `gorm:"column:type_of_veh" json:"type_of_veh"`
	Count int64             `json:"count"`
}

func (r *AnalyticsRepository) VehiclesByType(ctx context.Context) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Select("type_of_veh, COUNT(*) AS count").
		Group("type_of_veh").
		Order("type_of_veh").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
