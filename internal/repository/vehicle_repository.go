package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"checkpoint-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// ListRFIDs returns the registry snapshot used to validate a batch. The
// caller takes it once per upload and never refreshes it mid-batch.
func (r *VehicleRepository) ListRFIDs(ctx context.Context) (map[string]struct{}, error) {
	var rfids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Pluck("rfid", &rfids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(rfids))
	for _, rfid := range rfids {
		set[rfid] = struct{}{}
	}
	return set, nil
}

// GetBaNo fetches the BA number for classification. A missing record is
// reported via the found flag, not as an error.
func (r *VehicleRepository) GetBaNo(ctx context.Context, rfid string) (string, bool, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Select("rfid", "ba_no").
		Where("rfid = ?", rfid).
		First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return vehicle.BaNo, true, nil
}

func (r *VehicleRepository) UpdateType(ctx context.Context, rfid string, vehicleType model.VehicleType) error {
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("rfid = ?", rfid).
		Update("type_of_veh", vehicleType).Error
}

func (r *VehicleRepository) Exists(ctx context.Context, rfid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("rfid = ?", rfid).
		Count(&count).Error
	return count > 0, err
}

// VehicleOverviewRow is a registry record joined with the vehicle's latest
// accepted scan, when one exists.
type VehicleOverviewRow struct {
	RFID      string            `gorm:"column:rfid" json:"rfid"`
	BaNo      string            `json:"ba_no"`
	Type      model.VehicleType `gorm:"column:type_of_veh" json:"type_of_veh"`
	Unit      string            `json:"unit"`
	Formation string            `json:"formation"`
	HomeLane  string            `gorm:"column:home_lane" json:"home_lane"`
	TripCount int               `gorm:"column:no_of_trps" json:"no_of_trps"`
	Purpose   string            `json:"purpose"`
	LastCPID  *string           `gorm:"column:last_cpid" json:"last_cpid"`
	LastLane  *string           `gorm:"column:last_lane" json:"last_lane"`
	LastSeen  *time.Time        `gorm:"column:last_seen" json:"last_seen"`
}

func (r *VehicleRepository) ListOverview(ctx context.Context) ([]VehicleOverviewRow, error) {
	var rows []VehicleOverviewRow
	err := r.db.WithContext(ctx).
		Table("vehicle_details vd").
		Select(`
			vd.rfid,
			vd.ba_no,
			vd.type_of_veh,
			vd.unit,
			vd.formation,
			vd.lane AS home_lane,
			vd.no_of_trps,
			vd.purpose,
			sl.cpid AS last_cpid,
			c.lane AS last_lane,
			sl.scanned_at AS last_seen
		`).
		Joins(`LEFT JOIN scan_logs sl ON sl.rfid = vd.rfid AND sl.scanned_at = (
			SELECT MAX(s2.scanned_at) FROM scan_logs s2 WHERE s2.rfid = vd.rfid
		)`).
		Joins("LEFT JOIN checkpoints c ON c.cpid = sl.cpid").
		Order("sl.scanned_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FilterOptions lists the distinct registry values the dashboard offers as
// log filters.
type FilterOptions struct {
	Units      []string `json:"unit"`
	Formations []string `json:"formation"`
	Types      []string `json:"type_of_veh"`
	Purposes   []string `json:"purpose"`
}

func (r *VehicleRepository) DistinctFilterOptions(ctx context.Context) (*FilterOptions, error) {
	options := &FilterOptions{}
	columns := []struct {
		name string
		dest *[]string
	}{
		{"unit", &options.Units},
		{"formation", &options.Formations},
		{"type_of_veh", &options.Types},
		{"purpose", &options.Purposes},
	}
	for _, column := range columns {
		// Registry rows arrive out-of-band and may leave these columns
		// NULL; a NULL cannot be plucked into a string.
		err := r.db.WithContext(ctx).
			Model(&model.Vehicle{}).
			Distinct(column.name).
			Where(column.name+" IS NOT NULL").
			Order(column.name).
			Pluck(column.name, column.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return options, nil
}
